package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

const assistantSystemPrompt = `Tu es l'assistant de la boutique Velora.
Tu réponds en français, brièvement, sur les produits, commandes et livraisons.
Si tu ne sais pas, invite le client à contacter le support via la messagerie.`

var assistantClient = &http.Client{Timeout: 30 * time.Second}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AskAssistant relaie une courte conversation vers une API de complétion
// compatible OpenAI. Maximum 10 messages pour contenir le coût.
func AskAssistant(c *gin.Context) {
	apiKey := os.Getenv("ASSISTANT_API_KEY")
	if apiKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant non configuré"})
		return
	}

	var req struct {
		Messages []chatMessage `json:"messages" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}
	if len(req.Messages) == 0 || len(req.Messages) > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Entre 1 et 10 messages attendus"})
		return
	}

	messages := append([]chatMessage{{Role: "system", Content: assistantSystemPrompt}}, req.Messages...)

	body, _ := json.Marshal(gin.H{
		"model":      assistantModel(),
		"messages":   messages,
		"max_tokens": 500,
	})

	httpReq, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost,
		assistantBaseURL()+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := assistantClient.Do(httpReq)
	if err != nil {
		log.Printf("❌ Assistant injoignable: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Assistant indisponible"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Printf("❌ Assistant en erreur (%d): %s", resp.StatusCode, raw)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Assistant indisponible"})
		return
	}

	var completion struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil || len(completion.Choices) == 0 {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Réponse assistant invalide"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": completion.Choices[0].Message.Content})
}

func assistantBaseURL() string {
	if u := os.Getenv("ASSISTANT_BASE_URL"); u != "" {
		return u
	}
	return "https://api.openai.com/v1"
}

func assistantModel() string {
	if m := os.Getenv("ASSISTANT_MODEL"); m != "" {
		return m
	}
	return "gpt-4o-mini"
}
