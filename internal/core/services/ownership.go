package services

import (
	"encoding/json"
	"fmt"

	"github.com/jdw0903/EasyLFG/internal/core/ports"
)

const (
	TokenKeyPrefix    = "easylfg_secret_"
	ContactStorageKey = "easylfg_default_contact"
)

type ContactRecord struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Ownership est le registre local des capacités (post id -> token) d'un client.
// Un seul écrivain : aucune synchronisation ici.
type Ownership struct {
	kv ports.KeyValueStore
}

func NewOwnership(kv ports.KeyValueStore) *Ownership {
	return &Ownership{kv: kv}
}

func tokenKey(postID string) string { return TokenKeyPrefix + postID }

func (o *Ownership) Remember(postID, token string) error {
	if postID == "" || token == "" {
		return nil
	}
	return o.kv.Set(tokenKey(postID), token)
}

func (o *Ownership) Token(postID string) (string, bool) {
	tok, ok := o.kv.Get(tokenKey(postID))
	return tok, ok && tok != ""
}

func (o *Ownership) Forget(postID string) error {
	return o.kv.Remove(tokenKey(postID))
}

// IsOwned sert de prédicat au filtre "mine" et au badge "My post".
func (o *Ownership) IsOwned(postID string) bool {
	_, ok := o.Token(postID)
	return ok
}

func (o *Ownership) SaveContact(c ContactRecord) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal contact: %w", err)
	}
	return o.kv.Set(ContactStorageKey, string(raw))
}

// LoadContact ignore un enregistrement illisible.
func (o *Ownership) LoadContact() (ContactRecord, bool) {
	raw, ok := o.kv.Get(ContactStorageKey)
	if !ok || raw == "" {
		return ContactRecord{}, false
	}
	var c ContactRecord
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return ContactRecord{}, false
	}
	return c, true
}
