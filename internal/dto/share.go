package dto

import (
	"github.com/google/uuid"

	"github.com/JoaoZanelato/galeria-web/internal/sharing"
)

type ShareEntryReq struct {
	RecipientID uuid.UUID `json:"recipientId" binding:"required"`
	Permission  string    `json:"permission" binding:"required"`
}

type SetSharesReq struct {
	Shares []ShareEntryReq `json:"shares"`
}

// Entries converts the request body into sharing entries. Permission strings
// are passed through as-is; the manager canonicalizes and drops invalid ones.
func (r SetSharesReq) Entries() []sharing.Entry {
	entries := make([]sharing.Entry, 0, len(r.Shares))
	for _, s := range r.Shares {
		entries = append(entries, sharing.Entry{
			RecipientID: s.RecipientID,
			Permission:  s.Permission,
		})
	}
	return entries
}
