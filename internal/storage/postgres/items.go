package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filaops/core/internal/core"
	"github.com/filaops/core/internal/itemmaster"
)

// ItemStore is the pgx-backed item store. Its methods take a context, so
// it does not itself satisfy itemmaster.Repository; ItemRepository in
// shim.go adapts it to that interface.
type ItemStore struct {
	pool *pgxpool.Pool
}

// NewItemStore builds a pgx-backed ItemStore. Callers must have already
// run EnsureSchema.
func NewItemStore(pool *pgxpool.Pool) *ItemStore {
	return &ItemStore{pool: pool}
}

func (s *ItemStore) Create(ctx context.Context, item itemmaster.Item) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO items (id, sku, name, kind, procurement, stock_unit, material_type_id, color_id,
			standard_cost, reorder_point, safety_stock, lead_time_days, lot_tracked, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, item.ID.String(), item.SKU, item.Name, string(item.Kind), string(item.Procurement), item.StockUnit,
		idPtrString(item.MaterialTypeID), idPtrString(item.ColorID),
		item.StandardCost, item.ReorderPoint, item.SafetyStock, item.LeadTimeDays, item.LotTracked, item.Active)
	if err != nil {
		return mapUniqueViolation(err, core.ErrDuplicateSKU(item.SKU))
	}
	return nil
}

func (s *ItemStore) Update(ctx context.Context, item itemmaster.Item) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE items SET name=$2, procurement=$3, stock_unit=$4, material_type_id=$5, color_id=$6,
			standard_cost=$7, reorder_point=$8, safety_stock=$9, lead_time_days=$10, lot_tracked=$11, active=$12
		WHERE id=$1
	`, item.ID.String(), item.Name, string(item.Procurement), item.StockUnit,
		idPtrString(item.MaterialTypeID), idPtrString(item.ColorID),
		item.StandardCost, item.ReorderPoint, item.SafetyStock, item.LeadTimeDays, item.LotTracked, item.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrItemNotFound(item.SKU)
	}
	return nil
}

func (s *ItemStore) Get(ctx context.Context, id core.ID) (itemmaster.Item, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, sku, name, kind, procurement, stock_unit, material_type_id, color_id,
			standard_cost, reorder_point, safety_stock, lead_time_days, lot_tracked, active
		FROM items WHERE id=$1
	`, id.String())
	return scanItem(row)
}

func (s *ItemStore) GetBySKU(ctx context.Context, sku string) (itemmaster.Item, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, sku, name, kind, procurement, stock_unit, material_type_id, color_id,
			standard_cost, reorder_point, safety_stock, lead_time_days, lot_tracked, active
		FROM items WHERE sku_lower = lower($1)
	`, sku)
	return scanItem(row)
}

func (s *ItemStore) List(ctx context.Context, f itemmaster.Filter) ([]itemmaster.Item, error) {
	query := `
		SELECT id, sku, name, kind, procurement, stock_unit, material_type_id, color_id,
			standard_cost, reorder_point, safety_stock, lead_time_days, lot_tracked, active
		FROM items WHERE 1=1`
	args := []any{}
	if f.Kind != nil {
		args = append(args, string(*f.Kind))
		query += " AND kind = $" + itoa(len(args))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		query += " AND active = $" + itoa(len(args))
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []itemmaster.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		if f.LowStockOf != nil {
			onHand, ok := f.LowStockOf(item)
			if !ok || onHand.GreaterThan(item.ReorderPoint) {
				continue
			}
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *ItemStore) NextSKUSeq(ctx context.Context, prefix string) (int, error) {
	var next int
	err := s.pool.QueryRow(ctx, `
		INSERT INTO sku_sequences (prefix, next_value) VALUES ($1, 2)
		ON CONFLICT (prefix) DO UPDATE SET next_value = sku_sequences.next_value + 1
		RETURNING next_value - 1
	`, prefix).Scan(&next)
	return next, err
}

func (s *ItemStore) GetMaterialType(ctx context.Context, code string) (itemmaster.MaterialType, error) {
	var mt itemmaster.MaterialType
	var id, name string
	err := s.pool.QueryRow(ctx, `SELECT id, code, name FROM material_types WHERE lower(code)=lower($1)`, code).Scan(&id, &mt.Code, &name)
	if errors.Is(err, pgx.ErrNoRows) {
		return itemmaster.MaterialType{}, core.NewFieldError(core.ErrNotFound, core.CodeUnknownMaterialType, "unknown material type: "+code, "material_type_code")
	}
	if err != nil {
		return itemmaster.MaterialType{}, err
	}
	mt.Name = name
	mt.ID, err = core.ParseID(id)
	return mt, err
}

func (s *ItemStore) GetColor(ctx context.Context, code string) (itemmaster.Color, error) {
	var c itemmaster.Color
	var id string
	err := s.pool.QueryRow(ctx, `SELECT id, code, name FROM colors WHERE lower(code)=lower($1)`, code).Scan(&id, &c.Code, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return itemmaster.Color{}, core.NewFieldError(core.ErrNotFound, core.CodeUnknownColor, "unknown color: "+code, "color_code")
	}
	if err != nil {
		return itemmaster.Color{}, err
	}
	c.ID, err = core.ParseID(id)
	return c, err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanItem(row scannable) (itemmaster.Item, error) {
	var item itemmaster.Item
	var id, kind, procurement string
	var materialTypeID, colorID *string
	err := row.Scan(&id, &item.SKU, &item.Name, &kind, &procurement, &item.StockUnit, &materialTypeID, &colorID,
		&item.StandardCost, &item.ReorderPoint, &item.SafetyStock, &item.LeadTimeDays, &item.LotTracked, &item.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return itemmaster.Item{}, core.ErrItemNotFound(item.SKU)
	}
	if err != nil {
		return itemmaster.Item{}, err
	}
	item.ID, err = core.ParseID(id)
	if err != nil {
		return itemmaster.Item{}, err
	}
	item.Kind = itemmaster.Kind(kind)
	item.Procurement = itemmaster.Procurement(procurement)
	if materialTypeID != nil {
		parsed, err := core.ParseID(*materialTypeID)
		if err != nil {
			return itemmaster.Item{}, err
		}
		item.MaterialTypeID = &parsed
	}
	if colorID != nil {
		parsed, err := core.ParseID(*colorID)
		if err != nil {
			return itemmaster.Item{}, err
		}
		item.ColorID = &parsed
	}
	return item, nil
}

func idPtrString(id *core.ID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func mapUniqueViolation(err error, mapped error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return mapped
	}
	return err
}
