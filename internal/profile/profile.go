// Package profile keeps each user's delivery details and a short history of
// recently used addresses and phone numbers, prefetched into the checkout
// form.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	pkgerrors "github.com/chowpack/chowpack-engine/pkg/errors"
	"github.com/chowpack/chowpack-engine/pkg/logger"
	"github.com/chowpack/chowpack-engine/pkg/redis"
)

const historyLimit = 5

const (
	fieldAddress        = "address"
	fieldPhone          = "phone"
	fieldAddressHistory = "addresses"
	fieldPhoneHistory   = "phones"
)

// DeliveryDetails is the prefill snapshot for the checkout form.
type DeliveryDetails struct {
	Address   string   `json:"address"`
	Phone     string   `json:"phone"`
	Addresses []string `json:"addresses"`
	Phones    []string `json:"phones"`
}

// Service reads and records delivery details. Record runs only after a
// successful order.
type Service interface {
	Details(ctx context.Context, ownerID string) (DeliveryDetails, error)
	Record(ctx context.Context, ownerID, address, phone string) error
}

type profileKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	ProfileKey(ownerID, field string) string
}

type service struct {
	kv   profileKV
	logg *logger.Logger
}

func NewService(client *redis.Client, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "redis client is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &service{kv: client, logg: logg}, nil
}

func (s *service) Details(ctx context.Context, ownerID string) (DeliveryDetails, error) {
	if ownerID == "" {
		return DeliveryDetails{}, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	details := DeliveryDetails{
		Addresses: []string{},
		Phones:    []string{},
	}
	details.Address = s.readString(ctx, ownerID, fieldAddress)
	details.Phone = s.readString(ctx, ownerID, fieldPhone)
	details.Addresses = s.readHistory(ctx, ownerID, fieldAddressHistory)
	details.Phones = s.readHistory(ctx, ownerID, fieldPhoneHistory)
	return details, nil
}

func (s *service) Record(ctx context.Context, ownerID, address, phone string) error {
	if ownerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	address = strings.TrimSpace(address)
	phone = strings.TrimSpace(phone)

	if address != "" {
		if err := s.kv.Set(ctx, s.kv.ProfileKey(ownerID, fieldAddress), address, 0); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving address")
		}
		if err := s.pushHistory(ctx, ownerID, fieldAddressHistory, address); err != nil {
			return err
		}
	}
	if phone != "" {
		if err := s.kv.Set(ctx, s.kv.ProfileKey(ownerID, fieldPhone), phone, 0); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving phone")
		}
		if err := s.pushHistory(ctx, ownerID, fieldPhoneHistory, phone); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) readString(ctx context.Context, ownerID, field string) string {
	value, err := s.kv.Get(ctx, s.kv.ProfileKey(ownerID, field))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"field": field,
				"error": err.Error(),
			}), "profile field read failed")
		}
		return ""
	}
	return value
}

func (s *service) readHistory(ctx context.Context, ownerID, field string) []string {
	raw := s.readString(ctx, ownerID, field)
	if raw == "" {
		return []string{}
	}
	var history []string
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return []string{}
	}
	return history
}

// pushHistory prepends a value not already present, capping at the five most
// recent entries.
func (s *service) pushHistory(ctx context.Context, ownerID, field, value string) error {
	history := s.readHistory(ctx, ownerID, field)
	for _, existing := range history {
		if existing == value {
			return nil
		}
	}
	history = append([]string{value}, history...)
	if len(history) > historyLimit {
		history = history[:historyLimit]
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding history")
	}
	if err := s.kv.Set(ctx, s.kv.ProfileKey(ownerID, field), string(raw), 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving history")
	}
	return nil
}
