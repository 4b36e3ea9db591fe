package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Widgets interface {
	repository.Repository[*Widget]

	FindByName(ctx context.Context, name string) (*Widget, error)
	FindByNameTx(ctx context.Context, tx bun.IDB, name string) (*Widget, error)
	Page(ctx context.Context, page, perPage int) ([]*Widget, int, error)
	Save(ctx context.Context, widget *Widget) (*Widget, error)
	SaveTx(ctx context.Context, tx bun.IDB, widget *Widget) (*Widget, error)
	DeleteByName(ctx context.Context, name string) error
	DeleteByNameTx(ctx context.Context, tx bun.IDB, name string) error
}

type widgets struct {
	repository.Repository[*Widget]
	db *bun.DB
}

var _ Widgets = (*widgets)(nil)

func NewWidgetsRepository(db *bun.DB) Widgets {
	repo := repository.NewRepository[*Widget](db, repository.ModelHandlers[*Widget]{
		NewRecord: func() *Widget { return &Widget{} },
		GetID: func(w *Widget) uuid.UUID {
			if w == nil {
				return uuid.Nil
			}
			return w.ID
		},
		SetID: func(w *Widget, id uuid.UUID) {
			if w != nil {
				w.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &widgets{Repository: repo, db: db}
}

func (r *widgets) FindByName(ctx context.Context, name string) (*Widget, error) {
	return r.FindByNameTx(ctx, r.db, name)
}

// FindByNameTx loads the widget and its owner
func (r *widgets) FindByNameTx(ctx context.Context, tx bun.IDB, name string) (*Widget, error) {
	record := &Widget{}
	err := tx.NewSelect().
		Model(record).
		Relation("Owner").
		Where("?TableAlias.name = ?", strings.ToLower(name)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNoRows(err) {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"table": "widgets",
				"name":  name,
			})
		}
		return nil, err
	}
	return record, nil
}

// Page returns widgets ordered by name and the total count. page is 1 based.
func (r *widgets) Page(ctx context.Context, page, perPage int) ([]*Widget, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	var records []*Widget
	total, err := r.db.NewSelect().
		Model(&records).
		Relation("Owner").
		OrderExpr("?TableAlias.name ASC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		ScanAndCount(ctx)

	if err != nil && !isNoRows(err) {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *widgets) Save(ctx context.Context, widget *Widget) (*Widget, error) {
	return r.SaveTx(ctx, r.db, widget)
}

// SaveTx inserts new widgets and updates existing ones by id
func (r *widgets) SaveTx(ctx context.Context, tx bun.IDB, widget *Widget) (*Widget, error) {
	widget.Name = strings.ToLower(widget.Name)
	if widget.ID == uuid.Nil {
		widget.ID = uuid.New()
		_, err := tx.NewInsert().Model(widget).Exec(ctx)
		return widget, err
	}

	_, err := tx.NewUpdate().
		Model(widget).
		Column("name", "info_url", "deadline").
		WherePK().
		Exec(ctx)
	return widget, err
}

func (r *widgets) DeleteByName(ctx context.Context, name string) error {
	return r.DeleteByNameTx(ctx, r.db, name)
}

func (r *widgets) DeleteByNameTx(ctx context.Context, tx bun.IDB, name string) error {
	res, err := tx.NewDelete().
		Model((*Widget)(nil)).
		Where("name = ?", strings.ToLower(name)).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.NewRecordNotFound().WithMetadata(map[string]any{
			"table": "widgets",
			"name":  name,
		})
	}
	return nil
}
