//go:build integration

package user

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"velora_back_end/internal/database"
)

// setupRedis démarre un Redis jetable et branche le client global dessus.
func setupRedis(ctx context.Context, t *testing.T) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("démarrage conteneur redis: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("arrêt conteneur redis: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatal(err)
	}

	database.Redis = redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	database.RedisClient = database.Redis
	if err := database.Redis.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}
}

func dialCartWS(t *testing.T, userID string) *websocket.Conn {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/cart/ws", func(c *gin.Context) {
		c.Set("user_id", userID)
		CartWebSocket(c)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/cart/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("connexion WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	var hello struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&hello); err != nil || hello.Type != "connected" {
		t.Fatalf("trame d'accueil: %v (type=%q)", err, hello.Type)
	}
	return conn
}

// Le serveur doit pomper la connexion en continu : un client qui envoie sa
// trame de fermeture doit recevoir l'écho de fermeture tout de suite, pas
// rester ignoré jusqu'à la prochaine écriture du serveur.
func TestCartWebSocket_CloseFrameIsAcknowledged(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	setupRedis(ctx, t)
	conn := dialCartWS(t, "user-ws-close")

	deadline := time.Now().Add(5 * time.Second)
	if err := conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline); err != nil {
		t.Fatalf("envoi trame de fermeture: %v", err)
	}

	conn.SetReadDeadline(deadline)
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("attendu l'écho de fermeture, obtenu %v", err)
	}
}

// Une modification du panier publiée sur Redis doit arriver en push.
func TestCartWebSocket_PushesCartOnUpdate(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	setupRedis(ctx, t)
	userID := "user-ws-push"
	conn := dialCartWS(t, userID)

	if err := database.Redis.Set(ctx, cartKey(userID),
		`[{"product_id":"p1","name":"Lampe","price":19.99,"quantity":2}]`, 0).Err(); err != nil {
		t.Fatal(err)
	}
	// petite marge pour laisser l'abonnement pub/sub s'établir
	time.Sleep(200 * time.Millisecond)
	if err := database.Redis.Publish(ctx, cartKey(userID), "updated").Err(); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var push struct {
		Type  string  `json:"type"`
		Count int     `json:"count"`
		Total float64 `json:"total"`
	}
	if err := conn.ReadJSON(&push); err != nil {
		t.Fatalf("lecture push: %v", err)
	}
	if push.Type != "cart_updated" || push.Count != 1 {
		t.Errorf("push = %+v, attendu cart_updated avec 1 ligne", push)
	}
}
