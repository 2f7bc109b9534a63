package classify

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"positionScope/internal/model"
)

// Classify labels transfer events against the role sets, preserving input
// order. Events where neither endpoint has a role are dropped. Amounts are
// scaled from raw base units by 10^decimals.
func Classify(events []model.TransferEvent, roles RoleSets, decimals uint8) ([]model.LabeledTrade, error) {
	trades := make([]model.LabeledTrade, 0, len(events))
	for _, event := range events {
		fromRole := roles.RoleOf(common.HexToAddress(event.From))
		toRole := roles.RoleOf(common.HexToAddress(event.To))

		label, ok := labelFor(fromRole, toRole)
		if !ok {
			continue
		}

		raw, err := event.AmountBig()
		if err != nil {
			return nil, fmt.Errorf("classify: %w", err)
		}

		trades = append(trades, model.LabeledTrade{
			Label:       label,
			Amount:      decimal.NewFromBigInt(raw, -int32(decimals)),
			From:        event.From,
			To:          event.To,
			BlockNumber: event.BlockNumber,
			Timestamp:   event.Timestamp,
		})
	}
	return trades, nil
}

// labelFor applies the rule table. The cases are mutually exclusive given
// disjoint role sets.
func labelFor(from, to Role) (model.TradeLabel, bool) {
	switch {
	case from == RoleExchange && to == RoleUser:
		return model.LabelBuy, true
	case from == RoleUser && to == RoleExchange:
		return model.LabelSell, true
	case from == RoleUser && to == RoleUser:
		return model.LabelTransferWithin, true
	case to == RoleUser:
		return model.LabelInputUnknown, true
	case from == RoleUser:
		return model.LabelOutputUnknown, true
	default:
		return "", false
	}
}
