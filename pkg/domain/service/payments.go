package service

import (
	"github.com/pkg/errors"

	"posservice/pkg/domain/model"
)

var (
	ErrInvalidPaymentAmount = errors.New("payment amount must be positive")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// reconcilePayments checks that the instruments cover totalCents exactly.
// Monetary methods contribute their face value, loyalty_points contribute
// amount times the configured redemption rate. Returns the total points to
// redeem. Pure computation, no mutation.
func (s *checkoutService) reconcilePayments(totalCents int64, payments []model.Payment, customer *model.Customer) (int64, error) {
	if len(payments) == 0 {
		return 0, model.ErrNoPaymentProvided
	}

	var paidCents, redeemedPoints int64
	for _, p := range payments {
		if p.Amount <= 0 {
			return 0, errors.Wrapf(ErrInvalidPaymentAmount, "%s: %d", p.Method, p.Amount)
		}
		switch p.Method {
		case model.PaymentCash, model.PaymentCard, model.PaymentTransfer:
			paidCents += p.Amount
		case model.PaymentLoyaltyPoints:
			if customer == nil {
				return 0, model.ErrRedemptionRequiresCustomer
			}
			redeemedPoints += p.Amount
		default:
			return 0, errors.Wrapf(ErrUnknownPaymentMethod, "%q", p.Method)
		}
	}

	if customer != nil && redeemedPoints > customer.LoyaltyPoints {
		return 0, errors.Wrapf(model.ErrInsufficientPoints, "requested %d, balance %d", redeemedPoints, customer.LoyaltyPoints)
	}

	contributed := paidCents + redeemedPoints*s.cfg.RedemptionCentsPerPoint
	if contributed != totalCents {
		return 0, errors.Wrapf(model.ErrPaymentMismatch, "provided %d, required %d, delta %+d", contributed, totalCents, contributed-totalCents)
	}
	return redeemedPoints, nil
}
