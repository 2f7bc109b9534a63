package classify

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"positionScope/internal/model"
)

var (
	exchangeAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	userAddr     = common.HexToAddress("0x2222222222222222222222222222222222222222")
	otherUser    = common.HexToAddress("0x3333333333333333333333333333333333333333")
	strangerAddr = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

func testRoles() RoleSets {
	return NewRoleSets(
		[]common.Address{exchangeAddr},
		[]common.Address{userAddr, otherUser},
	)
}

func event(from, to common.Address, amount string) model.TransferEvent {
	return model.TransferEvent{
		ChainID:     56,
		Token:       "0x5555555555555555555555555555555555555555",
		From:        from.Hex(),
		To:          to.Hex(),
		Amount:      amount,
		BlockNumber: 100,
		Timestamp:   1700000000,
	}
}

func TestClassifyRuleTable(t *testing.T) {
	cases := []struct {
		name string
		from common.Address
		to   common.Address
		want model.TradeLabel
	}{
		{"exchange to user is buy", exchangeAddr, userAddr, model.LabelBuy},
		{"user to exchange is sell", userAddr, exchangeAddr, model.LabelSell},
		{"user to user is internal", userAddr, otherUser, model.LabelTransferWithin},
		{"stranger to user is input unknown", strangerAddr, userAddr, model.LabelInputUnknown},
		{"user to stranger is output unknown", userAddr, strangerAddr, model.LabelOutputUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trades, err := Classify([]model.TransferEvent{event(tc.from, tc.to, "1000")}, testRoles(), 0)
			if err != nil {
				t.Fatalf("classify failed: %v", err)
			}
			if len(trades) != 1 {
				t.Fatalf("expected 1 trade, got %d", len(trades))
			}
			if trades[0].Label != tc.want {
				t.Fatalf("label = %q, want %q", trades[0].Label, tc.want)
			}
		})
	}
}

func TestClassifyDropsUnrelatedTransfers(t *testing.T) {
	events := []model.TransferEvent{
		event(strangerAddr, strangerAddr, "1000"),
		event(strangerAddr, exchangeAddr, "1000"),
		event(exchangeAddr, strangerAddr, "1000"),
	}

	trades, err := Classify(events, testRoles(), 0)
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if len(trades) != 0 {
		t.Fatalf("expected all events dropped, got %d trades", len(trades))
	}
}

func TestClassifyScalesAmountByDecimals(t *testing.T) {
	trades, err := Classify([]model.TransferEvent{event(exchangeAddr, userAddr, "1500000000000000000")}, testRoles(), 18)
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}

	want := decimal.RequireFromString("1.5")
	if !trades[0].Amount.Equal(want) {
		t.Fatalf("amount = %s, want %s", trades[0].Amount, want)
	}
}

func TestClassifyPreservesOrder(t *testing.T) {
	events := []model.TransferEvent{
		event(exchangeAddr, userAddr, "1"),
		event(userAddr, exchangeAddr, "2"),
		event(exchangeAddr, userAddr, "3"),
	}

	trades, err := Classify(events, testRoles(), 0)
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	wantLabels := []model.TradeLabel{model.LabelBuy, model.LabelSell, model.LabelBuy}
	for i, trade := range trades {
		if trade.Label != wantLabels[i] {
			t.Fatalf("trade %d label %q, want %q", i, trade.Label, wantLabels[i])
		}
	}
}

func TestClassifyRejectsMalformedAmount(t *testing.T) {
	if _, err := Classify([]model.TransferEvent{event(exchangeAddr, userAddr, "not-a-number")}, testRoles(), 0); err == nil {
		t.Fatalf("expected error for malformed amount")
	}
}
