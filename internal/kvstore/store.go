package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

//go:generate mockgen -source=$GOFILE -destination=store_mock.go -package=kvstore

var ErrNotFound = errors.New("key not found")

type OpKind int

const (
	OpSet OpKind = iota + 1
	OpDelete
)

// Op is a single write inside an atomic Apply batch.
type Op struct {
	Kind  OpKind
	Key   string
	Value []byte
}

func SetOp(key string, value []byte) Op {
	return Op{Kind: OpSet, Key: key, Value: value}
}

func DeleteOp(key string) Op {
	return Op{Kind: OpDelete, Key: key}
}

// Store is the persistence contract of every domain package.
// Keys patterns support the '*' wildcard only.
type Store interface {
	// Get returns ErrNotFound when the key is missing.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Apply runs all ops, or none of them.
	Apply(ctx context.Context, ops ...Op) error
}

// GetJSON loads the value stored under key into dst.
// It reports false, with no error, when the key is missing.
func GetJSON(ctx context.Context, store Store, key Key, dst any) (bool, error) {
	raw, err := store.Get(ctx, key.String())
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, store Store, key Key, value any) error {
	op, err := SetJSONOp(key, value)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, op.Key, op.Value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func SetJSONOp(key Key, value any) (Op, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return Op{}, fmt.Errorf("marshal %s: %w", key, err)
	}
	return SetOp(key.String(), raw), nil
}

// UserKeys returns every typed key stored for the user. Raw keys that do not
// parse, or belong to another user, are skipped.
func UserKeys(ctx context.Context, store Store, userID string) ([]Key, error) {
	seen := make(map[string]struct{})
	var keys []Key
	for _, pattern := range []string{"*_" + userID, "*_" + userID + "_*"} {
		raw, err := store.Keys(ctx, pattern)
		if err != nil {
			return nil, fmt.Errorf("list keys [%s]: %w", pattern, err)
		}
		for _, r := range raw {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}

			k, err := ParseKey(r)
			if err != nil || k.UserID != userID {
				continue
			}
			keys = append(keys, k)
		}
	}
	return keys, nil
}
