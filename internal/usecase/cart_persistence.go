package usecase

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

const cartSlotPrefix = "cart:"

func CartSlotKey(sessionID string) string {
	return cartSlotPrefix + sessionID
}

// CartPersistence stores one session's cart in a single durable slot.
// Neither direction ever fails towards the caller: a failed save leaves
// the cart running in memory and a bad payload loads as an empty cart.
type CartPersistence struct {
	repo      repository.CartSnapshotRepository
	sessionID string
}

func NewCartPersistence(repo repository.CartSnapshotRepository, sessionID string) *CartPersistence {
	return &CartPersistence{repo: repo, sessionID: sessionID}
}

func (p *CartPersistence) Save(ctx context.Context, lines []entity.CartLine) {
	if lines == nil {
		lines = []entity.CartLine{}
	}

	payload, err := json.Marshal(lines)
	if err != nil {
		logger.LogSessionWarning(p.sessionID, "cart.save", err)
		return
	}

	if err := p.repo.Put(ctx, CartSlotKey(p.sessionID), payload); err != nil {
		logger.LogSessionWarning(p.sessionID, "cart.save", errors.TransientIO("cart snapshot not saved", err))
	}
}

func (p *CartPersistence) Load(ctx context.Context) []entity.CartLine {
	payload, found, err := p.repo.Get(ctx, CartSlotKey(p.sessionID))
	if err != nil {
		logger.LogSessionWarning(p.sessionID, "cart.load", errors.TransientIO("cart snapshot not read", err))
		return []entity.CartLine{}
	}
	if !found || len(payload) == 0 {
		return []entity.CartLine{}
	}

	lines, err := DecodeCartSnapshot(payload)
	if err != nil {
		logger.LogSessionWarning(p.sessionID, "cart.load", err)
		return []entity.CartLine{}
	}
	return lines
}

// DecodeCartSnapshot parses a persisted cart, coercing every field of
// every record. Only a payload that is not a JSON array is an error.
func DecodeCartSnapshot(payload []byte) ([]entity.CartLine, error) {
	var records []interface{}
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, errors.CorruptData("cart snapshot is not a list", err)
	}

	lines := make([]entity.CartLine, 0, len(records))
	index := make(map[string]int, len(records))

	for _, raw := range records {
		record, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}

		line, ok := decodeCartLine(record)
		if !ok {
			continue
		}

		// Hand-edited storage may repeat an item; fold it back into one line.
		if i, seen := index[line.Key]; seen {
			lines[i].Quantity += line.Quantity
			continue
		}
		index[line.Key] = len(lines)
		lines = append(lines, line)
	}
	return lines, nil
}

func decodeCartLine(record map[string]interface{}) (entity.CartLine, bool) {
	productID := coerceString(record["productId"])
	if productID == "" {
		productID = coerceString(record["id"])
	}
	if productID == "" {
		return entity.CartLine{}, false
	}

	size := coerceString(record["size"])
	color := coerceString(record["color"])

	// The stored key is never trusted; it may predate the current format.
	key := entity.CompositeKey(productID, size, color)

	price, ok := coerceNumber(record["price"])
	if !ok || price < 0 {
		price = 0
	}

	quantity := 1
	if q, ok := coerceNumber(record["quantity"]); ok && q >= 1 {
		quantity = int(math.Trunc(q))
	}

	return entity.CartLine{
		Key:       key,
		ProductID: productID,
		Name:      coerceString(record["name"]),
		Price:     price,
		Quantity:  quantity,
		Size:      size,
		Color:     color,
		Image:     coerceImage(record["image"]),
	}, true
}

func coerceString(v interface{}) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}

func coerceNumber(v interface{}) (float64, bool) {
	var f float64
	switch value := v.(type) {
	case float64:
		f = value
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func coerceImage(v interface{}) entity.ImageRef {
	switch value := v.(type) {
	case string:
		if strings.TrimSpace(value) == "" {
			return entity.ImageRef{}
		}
		return entity.ParseImageRef(value)
	case map[string]interface{}:
		raw := coerceString(value["value"])
		if raw == "" {
			return entity.ImageRef{}
		}
		switch entity.ImageKind(coerceString(value["kind"])) {
		case entity.ImageURL:
			return entity.URLImage(raw)
		case entity.ImageGradient:
			return entity.GradientImage(raw)
		}
		return entity.ParseImageRef(raw)
	default:
		return entity.ImageRef{}
	}
}
