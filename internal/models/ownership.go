package models

import (
	"encoding/json"
	"errors"
)

// OwnershipRecord asserts which key owns a piece of a collaborative beat.
//
// The owning key is read from "owner". Older payloads label it "public_key";
// that name is accepted when "owner" is absent. All three fields must be present.
type OwnershipRecord struct {
	Owner   string `json:"owner"`
	DataKey string `json:"data_key"`
	CID     string `json:"cid"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *OwnershipRecord) UnmarshalJSON(b []byte) error {
	var raw struct {
		Owner     *string `json:"owner"`
		PublicKey *string `json:"public_key"`
		DataKey   *string `json:"data_key"`
		CID       *string `json:"cid"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	owner := raw.Owner
	if owner == nil {
		owner = raw.PublicKey
	}
	switch {
	case owner == nil:
		return errors.New("missing field `owner`")
	case raw.DataKey == nil:
		return errors.New("missing field `data_key`")
	case raw.CID == nil:
		return errors.New("missing field `cid`")
	}
	*r = OwnershipRecord{Owner: *owner, DataKey: *raw.DataKey, CID: *raw.CID}
	return nil
}
