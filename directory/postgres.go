package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
)

type guestRow struct {
	bun.BaseModel `bun:"table:guests"`

	GuestID             string `bun:"guest_id,pk"`
	PhoneNumber         string `bun:"phone_number,unique"`
	Name                string `bun:"name"`
	PreferredLanguage   string `bun:"preferred_language"`
	VIPStatus           bool   `bun:"vip_status"`
	DietaryRestrictions string `bun:"dietary_restrictions"`
	AccessibilityNeeds  string `bun:"accessibility_needs"`
}

type bookingRow struct {
	bun.BaseModel `bun:"table:bookings"`

	PropertyID   string       `bun:"property_id"`
	GuestID      string       `bun:"guest_id,pk"`
	CheckIn      sql.NullTime `bun:"check_in"`
	CheckOut     sql.NullTime `bun:"check_out"`
	RoomType     string       `bun:"room_type"`
	PropertyName string       `bun:"property_name"`
}

// PostgresDirectory serves guest and booking records from Postgres. It is
// an alternative to JSONDirectory behind the same contract.
type PostgresDirectory struct {
	db *bun.DB
}

// NewPostgres opens a bun connection over pgdriver and verifies it.
func NewPostgres(ctx context.Context, dsn string) (*PostgresDirectory, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresDirectory{db: db}, nil
}

func (d *PostgresDirectory) Close() error {
	return d.db.Close()
}

func (d *PostgresDirectory) GetGuest(ctx context.Context, phoneNumber string) (*contractx.Guest, error) {
	var row guestRow
	err := d.db.NewSelect().
		Model(&row).
		Where("phone_number = ?", phoneNumber).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select guest: %w", err)
	}
	return &contractx.Guest{
		GuestID:             row.GuestID,
		PhoneNumber:         row.PhoneNumber,
		Name:                row.Name,
		PreferredLanguage:   row.PreferredLanguage,
		VIPStatus:           row.VIPStatus,
		DietaryRestrictions: row.DietaryRestrictions,
		AccessibilityNeeds:  row.AccessibilityNeeds,
	}, nil
}

func (d *PostgresDirectory) GetBooking(ctx context.Context, guestID string) (*contractx.Booking, error) {
	var row bookingRow
	err := d.db.NewSelect().
		Model(&row).
		Where("guest_id = ?", guestID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select booking: %w", err)
	}
	booking := &contractx.Booking{
		PropertyID:   row.PropertyID,
		GuestID:      row.GuestID,
		RoomType:     row.RoomType,
		PropertyName: row.PropertyName,
	}
	if row.CheckIn.Valid {
		booking.CheckIn = row.CheckIn.Time
	}
	if row.CheckOut.Valid {
		booking.CheckOut = row.CheckOut.Time
	}
	return booking, nil
}

func (d *PostgresDirectory) Guests(ctx context.Context) ([]contractx.Guest, error) {
	var rows []guestRow
	if err := d.db.NewSelect().Model(&rows).Order("guest_id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select guests: %w", err)
	}
	out := make([]contractx.Guest, 0, len(rows))
	for _, row := range rows {
		out = append(out, contractx.Guest{
			GuestID:             row.GuestID,
			PhoneNumber:         row.PhoneNumber,
			Name:                row.Name,
			PreferredLanguage:   row.PreferredLanguage,
			VIPStatus:           row.VIPStatus,
			DietaryRestrictions: row.DietaryRestrictions,
			AccessibilityNeeds:  row.AccessibilityNeeds,
		})
	}
	return out, nil
}
