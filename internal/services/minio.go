package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"velora_back_end/internal/database"
)

// UploadProductImage pousse une image produit dans MinIO et retourne son URL publique
func UploadProductImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	bucket := os.Getenv("MINIO_BUCKET")
	// nom unique pour éviter qu'un upload écrase le précédent
	objectName := uuid.New().String() + filepath.Ext(file.Filename)

	_, err = database.MinIO.PutObject(ctx, bucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	scheme := "http"
	if os.Getenv("MINIO_USE_SSL") == "true" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, os.Getenv("MINIO_ENDPOINT"), bucket, objectName), nil
}

// PresignedImageURL génère une URL signée temporaire (bucket privé)
func PresignedImageURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	u, err := database.MinIO.PresignedGetObject(ctx, os.Getenv("MINIO_BUCKET"), objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// RemoveImage supprime un objet du bucket
func RemoveImage(ctx context.Context, objectName string) error {
	if database.MinIO == nil {
		return fmt.Errorf("MinIO non initialisé")
	}
	return database.MinIO.RemoveObject(ctx, os.Getenv("MINIO_BUCKET"), objectName, minio.RemoveObjectOptions{})
}
