package types

import (
	"encoding/json"
	"fmt"
)

func (c ContentRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ContentRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("content ref: %w", err)
	}
	ref, err := ParseContentRef(s)
	if err != nil {
		return fmt.Errorf("content ref: %w", err)
	}
	*c = ref
	return nil
}

func (a ActionRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *ActionRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("action ref: %w", err)
	}
	ref, err := ParseActionRef(s)
	if err != nil {
		return fmt.Errorf("action ref: %w", err)
	}
	*a = ref
	return nil
}

func (k IdentityKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *IdentityKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("identity key: %w", err)
	}
	key, err := ParseIdentityKey(s)
	if err != nil {
		return err
	}
	*k = key
	return nil
}

func (v Version) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(&struct {
		EntryType  string `json:"entryType"`
		ContentRef string `json:"contentRef"`
		ActionRef  string `json:"actionRef"`
		Author     string `json:"author"`
		Seq        uint64 `json:"seq"`
		Level      int64  `json:"level"`
		Size       int    `json:"size"`
	}{
		EntryType:  v.EntryType,
		ContentRef: v.ContentRef.String(),
		ActionRef:  v.ActionRef.String(),
		Author:     v.Author.String(),
		Seq:        uint64(v.Seq),
		Level:      int64(v.Level),
		Size:       len(v.Content),
	}, "", "    ")
}
