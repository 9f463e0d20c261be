package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopward/catalog/internal/domain"
	pkgkafka "github.com/shopward/catalog/pkg/kafka"
)

// Kafka topic constants for catalog domain events.
const (
	TopicProductCreated  = "catalog.product.created"
	TopicProductUpdated  = "catalog.product.updated"
	TopicProductDeleted  = "catalog.product.deleted"
	TopicCategoryCreated = "catalog.category.created"
	TopicCategoryUpdated = "catalog.category.updated"
	TopicCategoryDeleted = "catalog.category.deleted"
	TopicPromoCreated    = "catalog.promo.created"
	TopicPromoUpdated    = "catalog.promo.updated"
	TopicPromoDeleted    = "catalog.promo.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeProduct  = "product"
	AggregateTypeCategory = "category"
	AggregateTypePromo    = "promo"
)

// Source identifier for events originating from the catalog service.
const SourceCatalogService = "catalog-service"

// ProductEventData is the payload for product lifecycle events.
type ProductEventData struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	CategoryID string `json:"category_id"`
	Price      int64  `json:"price"`
	Status     string `json:"status"`
}

// CategoryEventData is the payload for category lifecycle events.
type CategoryEventData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PromoEventData is the payload for promo lifecycle events.
type PromoEventData struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	DiscountPercent      float64  `json:"discount_percent"`
	MaxDiscount          int64    `json:"max_discount"`
	IsActive             bool     `json:"is_active"`
	ApplicableCategories []string `json:"applicable_categories"`
}

// DeletedEventData is the payload for deletion events across aggregates.
type DeletedEventData struct {
	ID string `json:"id"`
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published catalog event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}

func productData(product *domain.Product) ProductEventData {
	return ProductEventData{
		ID:         product.ID,
		Name:       product.Name,
		Slug:       product.Slug,
		CategoryID: product.CategoryID,
		Price:      product.Price,
		Status:     product.Status,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, productID string) error {
	return p.publish(ctx, TopicProductDeleted, productID, AggregateTypeProduct, DeletedEventData{ID: productID})
}

func categoryData(category *domain.Category) CategoryEventData {
	return CategoryEventData{
		ID:   category.ID,
		Name: category.Name,
		Slug: category.Slug,
	}
}

// PublishCategoryCreated publishes a category.created event.
func (p *Producer) PublishCategoryCreated(ctx context.Context, category *domain.Category) error {
	return p.publish(ctx, TopicCategoryCreated, category.ID, AggregateTypeCategory, categoryData(category))
}

// PublishCategoryUpdated publishes a category.updated event.
func (p *Producer) PublishCategoryUpdated(ctx context.Context, category *domain.Category) error {
	return p.publish(ctx, TopicCategoryUpdated, category.ID, AggregateTypeCategory, categoryData(category))
}

// PublishCategoryDeleted publishes a category.deleted event.
func (p *Producer) PublishCategoryDeleted(ctx context.Context, categoryID string) error {
	return p.publish(ctx, TopicCategoryDeleted, categoryID, AggregateTypeCategory, DeletedEventData{ID: categoryID})
}

func promoData(promo *domain.Promo) PromoEventData {
	return PromoEventData{
		ID:                   promo.ID,
		Title:                promo.Title,
		DiscountPercent:      promo.DiscountPercent,
		MaxDiscount:          promo.MaxDiscount,
		IsActive:             promo.IsActive,
		ApplicableCategories: promo.ApplicableCategories,
	}
}

// PublishPromoCreated publishes a promo.created event.
func (p *Producer) PublishPromoCreated(ctx context.Context, promo *domain.Promo) error {
	return p.publish(ctx, TopicPromoCreated, promo.ID, AggregateTypePromo, promoData(promo))
}

// PublishPromoUpdated publishes a promo.updated event.
func (p *Producer) PublishPromoUpdated(ctx context.Context, promo *domain.Promo) error {
	return p.publish(ctx, TopicPromoUpdated, promo.ID, AggregateTypePromo, promoData(promo))
}

// PublishPromoDeleted publishes a promo.deleted event.
func (p *Producer) PublishPromoDeleted(ctx context.Context, promoID string) error {
	return p.publish(ctx, TopicPromoDeleted, promoID, AggregateTypePromo, DeletedEventData{ID: promoID})
}
