package request

import (
	"errors"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	// Letters, digits, spaces and hyphens, with at least one letter.
	itemTypeRegexPattern = `^(?=.*[A-Za-z])[A-Za-z0-9 \-]{1,64}$`
)

var (
	itemTypeExp = regexp2.MustCompile(itemTypeRegexPattern, regexp2.None)

	errInvalidItemType = errors.New("the type must be 1 to 64 letters, digits, spaces or hyphens and contain at least 1 letter")
	errUnknownAction   = errors.New("unknown action")
)

const (
	ActionCollect  = "collect"
	ActionReceipts = "receipts"
)

// ValidateItemType checks a market type name taken from a path or a message.
func ValidateItemType(itemType string) error {
	ok, err := itemTypeExp.MatchString(itemType)
	if err != nil || !ok {
		return errInvalidItemType
	}

	return nil
}

type CreateMarketItemRequest struct {
	Type   string `json:"type"`
	Supply int    `json:"supply"`
	Demand int    `json:"demand"`
}

func (req *CreateMarketItemRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Type, validation.Required),
		validation.Field(&req.Supply, validation.Min(0)),
		validation.Field(&req.Demand, validation.Min(0)),
	)
	if err != nil {
		return err
	}

	return ValidateItemType(req.Type)
}

// StreamRequest is one client-to-server websocket frame.
type StreamRequest struct {
	Action string `json:"action"`
	Type   string `json:"type,omitempty"`
}

func (req *StreamRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Action, validation.Required),
	)
	if err != nil {
		return err
	}

	switch req.Action {
	case ActionCollect:
		return ValidateItemType(req.Type)
	case ActionReceipts:
		return nil
	default:
		return errUnknownAction
	}
}
