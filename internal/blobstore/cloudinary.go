// Package blobstore talks to the remote image store. The gallery only ever
// deletes blobs from here; uploads go straight from the client to the store
// and arrive in this service as a storage key plus URL.
package blobstore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Store is the delete-by-key contract the cascade engine depends on.
type Store interface {
	Delete(ctx context.Context, storageKey string) error
}

// Cloudinary deletes blobs through the Cloudinary admin API.
type Cloudinary struct {
	client    *resty.Client
	cloudName string
	apiKey    string
	apiSecret string
}

type destroyResponse struct {
	Result string `json:"result"`
}

func NewCloudinary(cloudName, apiKey, apiSecret string) *Cloudinary {
	client := resty.New()
	client.SetBaseURL("https://api.cloudinary.com/v1_1/" + cloudName)
	client.SetTimeout(10 * time.Second)

	return &Cloudinary{
		client:    client,
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

// Delete destroys the blob stored under storageKey (the Cloudinary public id).
// Deleting an already-absent key is treated as success so that a retried
// cascade does not fail.
func (c *Cloudinary) Delete(ctx context.Context, storageKey string) error {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	var result destroyResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"public_id": storageKey,
			"timestamp": timestamp,
			"api_key":   c.apiKey,
			"signature": c.sign(storageKey, timestamp),
		}).
		SetResult(&result).
		Post("/image/destroy")
	if err != nil {
		return fmt.Errorf("blob delete request failed: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("blob delete failed with status %d", resp.StatusCode())
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("blob delete rejected: %s", result.Result)
	}

	return nil
}

// sign produces the SHA-1 request signature the admin API requires.
func (c *Cloudinary) sign(publicID, timestamp string) string {
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, c.apiSecret)
	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}
