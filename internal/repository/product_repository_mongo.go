package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"inventory-tracker/internal/domain/entity"
	domainRepo "inventory-tracker/internal/domain/repository"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"
)

// productDocument is the stored shape of a product. Count is kept as Decimal128
// so increments stay exact on the server.
type productDocument struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Name      string               `bson:"name"`
	Count     primitive.Decimal128 `bson:"count"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

func (d productDocument) toEntity() (*entity.Product, error) {
	count, err := decimal.NewFromString(d.Count.String())
	if err != nil {
		return nil, err
	}
	return &entity.Product{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Count:     count,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(collection *mongo.Collection) domainRepo.ProductRepository {
	return &mongoProductRepository{collection: collection}
}

func (r *mongoProductRepository) Increment(ctx context.Context, name string, delta decimal.Decimal) (*entity.Product, bool, error) {
	inc, err := toDecimal128(delta)
	if err != nil {
		return nil, false, err
	}

	newID := primitive.NewObjectID()
	now := time.Now().UTC()
	update := bson.M{
		"$inc":         bson.M{"count": inc},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"_id": newID, "createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc productDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"name": name}, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent upsert inserted the name first; the retry matches it
		err = r.collection.FindOneAndUpdate(ctx, bson.M{"name": name}, update, opts).Decode(&doc)
	}
	if err != nil {
		return nil, false, err
	}

	product, err := doc.toEntity()
	if err != nil {
		return nil, false, err
	}
	return product, doc.ID == newID, nil
}

func (r *mongoProductRepository) FindByName(ctx context.Context, name string) (*entity.Product, error) {
	var doc productDocument
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toEntity()
}

func (r *mongoProductRepository) Search(ctx context.Context, filter *entity.ProductFilter, limit, offset int) ([]entity.Product, int64, error) {
	query := mongoProductFilter(filter)

	var docs []productDocument
	var total int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := r.collection.CountDocuments(gctx, query)
		total = n
		return err
	})
	g.Go(func() error {
		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "name", Value: 1}}).
			SetSkip(int64(offset)).
			SetLimit(int64(limit))
		cursor, err := r.collection.Find(gctx, query, opts)
		if err != nil {
			return err
		}
		return cursor.All(gctx, &docs)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	products := make([]entity.Product, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.toEntity()
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, total, nil
}

func mongoProductFilter(filter *entity.ProductFilter) bson.M {
	if filter == nil {
		return bson.M{}
	}
	if filter.Name != "" {
		return bson.M{"name": filter.Name}
	}
	if filter.Search != "" {
		return bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}}
	}
	return bson.M{}
}

func (r *mongoProductRepository) Update(ctx context.Context, name string, changes entity.ProductChanges) (*entity.Product, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if changes.Name != nil {
		set["name"] = *changes.Name
	}
	if changes.Count != nil {
		count, err := toDecimal128(*changes.Count)
		if err != nil {
			return nil, err
		}
		set["count"] = count
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"name": name}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domainRepo.ErrDuplicateName
		}
		return nil, err
	}
	return doc.toEntity()
}

func (r *mongoProductRepository) DeleteByName(ctx context.Context, name string) (int64, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *mongoProductRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, readpref.Primary())
}
