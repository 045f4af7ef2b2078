// internal/platform/di/container.go
package di

import (
	"context"
	"log"

	"remarket/internal/adapters/out/cache"
	"remarket/internal/adapters/out/db"
	fsadapter "remarket/internal/adapters/out/firestore"
	"remarket/internal/adapters/out/mail"
	"remarket/internal/adapters/out/payment"
	"remarket/internal/application/query"
	"remarket/internal/application/usecase"
)

// Container wires repositories, usecases and queries from Infra.
type Container struct {
	Infra *Infra

	ProductUC    *usecase.ProductUsecase
	OrderUC      *usecase.OrderUsecase
	BestSellerUC *usecase.BestSellerUsecase
	PaymentFlow  *usecase.PaymentFlowUsecase

	CatalogQ *query.CatalogQuery
	CartQ    *query.CartQuery
}

func NewContainer(ctx context.Context, inf *Infra) *Container {
	cont := &Container{Infra: inf}

	products := fsadapter.NewProductRepositoryFS(inf.Firestore)
	orders := fsadapter.NewOrderRepositoryFS(inf.Firestore)
	committer := fsadapter.NewPaidCommitterFS(inf.Firestore)

	var redisCache *cache.RedisCache
	if inf.Redis != nil {
		redisCache = cache.NewRedisCache(inf.Redis)
	}

	var mailer usecase.OrderMailer
	if inf.SendGridAPIKey != "" && inf.Config.MailFrom != "" && inf.FirebaseAuth != nil {
		mailer = mail.NewOrderMailerSendGrid(inf.SendGridAPIKey, inf.Config.MailFrom, inf.FirebaseAuth)
	} else {
		log.Printf("[di] confirmation mail disabled (sendgrid key, MAIL_FROM or firebase auth missing)")
	}

	var reporter usecase.PaidOrderReporter
	if inf.ReportDB != nil {
		pg := db.NewOrderReportRepositoryPG(inf.ReportDB)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Printf("[di] WARN: reporting schema init failed: %v (reporting disabled)", err)
		} else {
			reporter = pg
		}
	}

	var gateway usecase.CheckoutGateway
	if inf.Config.PaymentBaseURL != "" {
		gateway = payment.NewCheckoutClient(inf.Config.PaymentBaseURL, inf.PaymentAPIKey)
	} else {
		log.Printf("[di] checkout gateway not configured (PAYMENT_BASE_URL empty)")
	}

	cont.ProductUC = usecase.NewProductUsecase(products, redisCache)
	cont.OrderUC = usecase.NewOrderUsecase(orders, products)
	cont.BestSellerUC = usecase.NewBestSellerUsecase(products, redisCache)
	cont.PaymentFlow = usecase.NewPaymentFlowUsecase(
		orders,
		gateway,
		committer,
		mailer,
		reporter,
		inf.Config.CheckoutSuccessURL,
		inf.Config.CheckoutCancelURL,
	)

	cont.CatalogQ = query.NewCatalogQuery(products, redisCache)
	cont.CartQ = query.NewCartQuery(products)

	return cont
}
