package format

import (
	"math"
	"testing"
)

func TestNewFXPresenter(t *testing.T) {
	tests := []struct {
		name      string
		currency  string
		rate      float64
		expected  string
		wantError bool
	}{
		{name: "Default is USD", currency: "", rate: 0, expected: "USD"},
		{name: "USD ignores rate", currency: "usd", rate: -1, expected: "USD"},
		{name: "MXN", currency: "MXN", rate: 18, expected: "MXN"},
		{name: "MXN needs a rate", currency: "MXN", rate: 0, wantError: true},
		{name: "Unsupported", currency: "EUR", rate: 1, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewFXPresenter(tt.currency, tt.rate)
			if tt.wantError {
				if err == nil {
					t.Errorf("NewFXPresenter() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFXPresenter() error = %v", err)
			}
			if p.Currency() != tt.expected {
				t.Errorf("Currency() = %s, expected %s", p.Currency(), tt.expected)
			}
		})
	}
}

func TestFXPresenterConvert(t *testing.T) {
	mxn, err := NewFXPresenter("MXN", 18)
	if err != nil {
		t.Fatalf("NewFXPresenter() error = %v", err)
	}
	usd, _ := NewFXPresenter("USD", 0)

	tests := []struct {
		name      string
		presenter FXPresenter
		amount    float64
		converted float64
		money     string
	}{
		{name: "USD identity", presenter: usd, amount: 1234.5, converted: 1234.5, money: "$1,234.50"},
		{name: "MXN", presenter: mxn, amount: 1234.5, converted: 22221, money: "MX$22,221.00"},
		{name: "MXN negative", presenter: mxn, amount: -18_000_000, converted: -324_000_000, money: "-MX$324,000,000.00"},
		{name: "MXN cents", presenter: mxn, amount: 0.013, converted: 0.23, money: "MX$0.23"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.presenter.Convert(tt.amount); math.Abs(got-tt.converted) > 1e-9 {
				t.Errorf("Convert(%v) = %v, expected %v", tt.amount, got, tt.converted)
			}
			if got := tt.presenter.Money(tt.amount); got != tt.money {
				t.Errorf("Money(%v) = %s, expected %s", tt.amount, got, tt.money)
			}
		})
	}
}

func TestFXPresenterLeavesInputUntouched(t *testing.T) {
	mxn, _ := NewFXPresenter("MXN", 17.5)
	amounts := []float64{100, 200}

	for _, a := range amounts {
		_ = mxn.Money(a)
		_ = mxn.Convert(a)
	}

	if amounts[0] != 100 || amounts[1] != 200 {
		t.Errorf("presenter mutated its input: %v", amounts)
	}
	if mxn.Rate() != 17.5 {
		t.Errorf("Rate() = %v, expected 17.5", mxn.Rate())
	}
	if got := mxn.Thousands(1_000_000); got != "MX$17,500k" {
		t.Errorf("Thousands() = %s, expected MX$17,500k", got)
	}
	if !math.IsNaN(mxn.Convert(math.NaN())) {
		t.Errorf("Convert(NaN) should stay NaN")
	}
	if mxn.Money(math.NaN()) != Placeholder {
		t.Errorf("Money(NaN) should render the placeholder")
	}
}

func TestZeroValueFXPresenter(t *testing.T) {
	var p FXPresenter
	if p.Currency() != "USD" || p.Rate() != 1 {
		t.Errorf("zero FXPresenter = %s@%v, expected USD@1", p.Currency(), p.Rate())
	}
	if got := p.Money(5); got != "$5.00" {
		t.Errorf("Money(5) = %s, expected $5.00", got)
	}
}
