package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/suhanarda/greengrocer/internal/coupon"
)

// CouponRepo implements coupon.Repository.
type CouponRepo struct {
	db *sqlx.DB
}

var _ coupon.Repository = (*CouponRepo)(nil)

var getCouponQuery = `SELECT * FROM coupons WHERE code = ?`

func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	var c coupon.Coupon
	if err := r.db.GetContext(ctx, &c, getCouponQuery, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sqlite: coupon %q not found", code)
		}
		return nil, fmt.Errorf("sqlite: get coupon %q: %w", code, err)
	}
	return &c, nil
}

var createCouponQuery = `
	INSERT INTO coupons
		(code, discount_type, value, min_cart_value, max_uses, current_uses,
		 valid_from, valid_until, is_active)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (r *CouponRepo) Create(ctx context.Context, c *coupon.Coupon) (int64, error) {
	res, err := r.db.ExecContext(ctx, createCouponQuery,
		c.Code, string(c.DiscountType), c.Value, c.MinCartValue, c.MaxUses, c.CurrentUses,
		c.ValidFrom, c.ValidUntil, c.IsActive,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: create coupon %q: %w", c.Code, err)
	}
	return res.LastInsertId()
}

// redeemCouponQuery keeps current_uses <= max_uses under concurrency: the cap
// lives inside the statement's own guard, so the last use of a coupon goes to
// exactly one of any number of racing checkouts.
var redeemCouponQuery = `
	UPDATE coupons SET current_uses = current_uses + 1
	WHERE code = ? AND is_active = 1 AND current_uses < max_uses`

func (r *CouponRepo) Redeem(ctx context.Context, code string) (bool, error) {
	res, err := r.db.ExecContext(ctx, redeemCouponQuery, code)
	if err != nil {
		return false, fmt.Errorf("sqlite: redeem coupon %q: %w", code, err)
	}
	return affected(res)
}

var releaseCouponQuery = `
	UPDATE coupons SET current_uses = current_uses - 1
	WHERE code = ? AND current_uses > 0`

// Release undoes one redemption. The floor guard keeps current_uses from
// going negative if a compensation ever runs twice.
func (r *CouponRepo) Release(ctx context.Context, code string) error {
	_, err := r.db.ExecContext(ctx, releaseCouponQuery, code)
	if err != nil {
		return fmt.Errorf("sqlite: release coupon %q: %w", code, err)
	}
	return nil
}
