package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	perrors "github.com/abgdnv/producthub/internal/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore implements ProductStore using a MongoDB collection as the data store.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a new instance of ProductStore backed by the given collection.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// productDocument is the persisted shape of a Product.
type productDocument struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Units       int                  `bson:"units"`
}

// EnsureIndexes creates the unique name index and the index backing sorted pages.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("name_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "units", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("units_id"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}

// Ping checks that the primary is reachable.
func (m *MongoStore) Ping(ctx context.Context) error {
	return m.coll.Database().Client().Ping(ctx, readpref.Primary())
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (m *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

// FindByName retrieves a product by its exact name.
// Returns ErrProductNotFound if no product has that name.
func (m *MongoStore) FindByName(ctx context.Context, name string) (*Product, error) {
	return m.findOne(ctx, bson.M{"name": name})
}

func (m *MongoStore) findOne(ctx context.Context, filter bson.M) (*Product, error) {
	var doc productDocument
	err := m.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	p, err := fromDocument(doc)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindPage retrieves the products matching q.
// It returns a slice of products, which may be empty if nothing matches.
func (m *MongoStore) FindPage(ctx context.Context, q Query) ([]Product, error) {
	cursor, err := m.coll.Find(ctx, pageFilter(q), pageOptions(q))
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	products := make([]Product, len(docs))
	for i, doc := range docs {
		if products[i], err = fromDocument(doc); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// Insert adds a new product with a fresh ObjectID.
// Returns ErrNameConflict if the unique name index rejects it.
func (m *MongoStore) Insert(ctx context.Context, product Product) (*Product, error) {
	product.ID = primitive.NewObjectID()
	doc, err := toDocument(product)
	if err != nil {
		return nil, err
	}
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, perrors.ErrNameConflict
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	return &product, nil
}

// Replace overwrites an existing product, keeping its ID.
// Returns ErrProductNotFound if no document matched the ID.
func (m *MongoStore) Replace(ctx context.Context, id primitive.ObjectID, product Product) error {
	product.ID = id
	doc, err := toDocument(product)
	if err != nil {
		return err
	}
	res, err := m.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return perrors.ErrNameConflict
		}
		return fmt.Errorf("failed to replace product %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// DeleteByID removes a product by its ID.
// Returns ErrProductNotFound if nothing was deleted.
func (m *MongoStore) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// pageFilter matches the search term as a literal, case-insensitive substring of name or description.
func pageFilter(q Query) bson.M {
	if q.Search == "" {
		return bson.M{}
	}
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"name": rx},
		bson.M{"description": rx},
	}}
}

func pageOptions(q Query) *options.FindOptions {
	opts := options.Find().SetSkip(q.Skip).SetLimit(q.Limit)
	switch q.Sort {
	case SortUnitsAsc:
		opts.SetSort(bson.D{{Key: "units", Value: 1}, {Key: "_id", Value: 1}})
	case SortUnitsDesc:
		opts.SetSort(bson.D{{Key: "units", Value: -1}, {Key: "_id", Value: 1}})
	}
	return opts
}

// EncodePrice converts a price to Decimal128 without rounding.
// ok is false when the price needs more than 34 significant digits or its exponent is out of range.
func EncodePrice(price decimal.Decimal) (primitive.Decimal128, bool) {
	return primitive.ParseDecimal128FromBigInt(price.Coefficient(), int(price.Exponent()))
}

func toDocument(p Product) (productDocument, error) {
	price, ok := EncodePrice(p.Price)
	if !ok {
		return productDocument{}, fmt.Errorf("failed to encode price %s: %w", p.Price, perrors.ErrUnencodablePrice)
	}
	return productDocument{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Units:       p.Units,
	}, nil
}

func fromDocument(doc productDocument) (Product, error) {
	coefficient, exp, err := doc.Price.BigInt()
	if err != nil {
		return Product{}, fmt.Errorf("failed to decode price of product %s: %w", doc.ID.Hex(), err)
	}
	return Product{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		Price:       decimal.NewFromBigInt(coefficient, int32(exp)),
		Units:       doc.Units,
	}, nil
}
