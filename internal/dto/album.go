package dto

import (
	"github.com/google/uuid"
)

type CreateAlbumReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateAlbumReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CreateImageReq struct {
	StorageKey   string     `json:"storageKey" binding:"required"`
	URL          string     `json:"url" binding:"required"`
	Description  string     `json:"description"`
	CategoryID   *uuid.UUID `json:"categoryId"`
	AlbumID      *uuid.UUID `json:"albumId"`
	NewAlbumName string     `json:"newAlbumName"`
	NewAlbumDesc string     `json:"newAlbumDescription"`
	Tags         []string   `json:"tags"`
}

type UpdateImageReq struct {
	Description string     `json:"description"`
	CategoryID  *uuid.UUID `json:"categoryId"`
	Tags        []string   `json:"tags"`
}

type AddImageToAlbumReq struct {
	ImageID uuid.UUID `json:"imageId" binding:"required"`
}
