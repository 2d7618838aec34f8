package components

import (
	"rently-backend/internal/infra/catalog"
	"rently-backend/internal/infra/db"
	"rently-backend/internal/infra/gateway"
	"rently-backend/internal/infra/readstore"
	"rently-backend/internal/infra/repository"
	"rently-backend/internal/infra/uow"
	"rently-backend/internal/pkg/config"
	"rently-backend/internal/usecase/commands"
	"rently-backend/internal/usecase/queries"
	"rently-backend/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		// Pool-bound idempotency repository; the booking command claims
		// keys outside its write transaction.
		fx.Annotate(
			repository.NewIdempotencyRepository,
			fx.As(new(shared.IdempotencyRepository)),
		),
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingViewRepo)),
		),
		fx.Annotate(
			readstore.NewBillReadStore,
			fx.As(new(queries.BillViewRepo)),
		),
		fx.Annotate(
			NewCatalogClient,
			fx.As(new(commands.CatalogService)),
		),
		fx.Annotate(
			NewPaymentGateway,
			fx.As(new(commands.PaymentGateway)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewCatalogClient(cfg config.Config) *catalog.Client {
	return catalog.NewClient(cfg.Catalog)
}

func NewPaymentGateway(cfg config.Config) *gateway.RazorpayGateway {
	return gateway.NewRazorpayGateway(cfg.Gateway)
}
