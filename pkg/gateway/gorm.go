package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/naijagasonline/ngo-storefront/pkg/db"
	"github.com/naijagasonline/ngo-storefront/pkg/db/models"
	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
	"github.com/naijagasonline/ngo-storefront/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGateway talks to the backend database directly through GORM.
type GormGateway struct {
	db      *gorm.DB
	logg    *logger.Logger
	timeout time.Duration
}

// NewGormGateway builds a gateway over conn. timeout bounds calls whose
// context carries no deadline; zero disables it.
func NewGormGateway(conn *gorm.DB, timeout time.Duration, logg *logger.Logger) (*GormGateway, error) {
	if conn == nil {
		return nil, errors.New("gateway: gorm db is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &GormGateway{db: conn, logg: logg, timeout: timeout}, nil
}

// EnsureSchema creates the backend tables through GORM. It is used when the
// gateway runs over SQLite; Postgres gets its schema from goose.
func (g *GormGateway) EnsureSchema(ctx context.Context) error {
	return g.db.WithContext(ctx).AutoMigrate(
		&models.Product{},
		&models.ProductAddon{},
		&models.Order{},
		&models.ServiceRequest{},
		&models.JoinRequest{},
	)
}

func (g *GormGateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}

// InsertRow inserts row into table. A unique violation means the row is
// already present remotely and is reported as success.
func (g *GormGateway) InsertRow(ctx context.Context, table string, row Row) error {
	if err := validTable(table); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, table)
	}
	if len(row) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "row is empty")
	}
	values := make(map[string]any, len(row))
	for col, v := range row {
		if err := validColumn(col); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, col)
		}
		values[col] = v
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	err := g.db.WithContext(ctx).Table(table).Create(values).Error
	if err == nil {
		return nil
	}
	if db.IsUniqueViolation(err) {
		logCtx := g.logg.WithFields(ctx, map[string]any{"table": table, "tx_ref": row.String("tx_ref")})
		g.logg.Debug(logCtx, "row already present remotely")
		return nil
	}
	if db.IsDataError(err) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("%s row rejected", table))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("insert into %s", table))
}

// QueryRows reads rows from table narrowed by filter.
func (g *GormGateway) QueryRows(ctx context.Context, table string, filter Filter) ([]Row, error) {
	if err := validTable(table); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, table)
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	query := g.db.WithContext(ctx).Table(table)
	for _, col := range sortedKeys(filter.Eq) {
		if err := validColumn(col); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, col)
		}
		query = query.Where(clause.Eq{Column: clause.Column{Name: col}, Value: filter.Eq[col]})
	}
	for _, col := range sortedKeys(filter.In) {
		if err := validColumn(col); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, col)
		}
		values := filter.In[col]
		if len(values) == 0 {
			return []Row{}, nil
		}
		query = query.Where(clause.IN{Column: clause.Column{Name: col}, Values: values})
	}
	if filter.OrderBy != "" {
		if err := validColumn(filter.OrderBy); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, filter.OrderBy)
		}
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: filter.OrderBy}, Desc: filter.Desc})
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var found []map[string]any
	if err := query.Find(&found).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("query %s", table))
	}
	rows := make([]Row, 0, len(found))
	for _, r := range found {
		rows = append(rows, Row(r))
	}
	return rows, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
