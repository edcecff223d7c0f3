// Command seed-db prepares a fresh database: it runs migrations, inserts the
// catalog categories and starter products, and can mint the bcrypt admin
// password hash for STORE_ADMIN_PASSWORD_HASH.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nbenali/dz-storefront/internal/auth"
	"github.com/nbenali/dz-storefront/internal/domain/product"
	"github.com/nbenali/dz-storefront/internal/storage/postgres"
)

type seedSubcategory struct {
	name string
	slug string
}

type seedCategory struct {
	name          string
	slug          string
	subcategories []seedSubcategory
}

var categories = []seedCategory{
	{name: "Skincare", slug: "skincare", subcategories: []seedSubcategory{
		{name: "Huiles", slug: "huiles"},
		{name: "Savons", slug: "savons"},
		{name: "Crèmes & Sérums", slug: "cremes-serums"},
	}},
	{name: "Haircare", slug: "haircare", subcategories: []seedSubcategory{
		{name: "Poudres", slug: "poudres"},
		{name: "Huiles capillaires", slug: "huiles-capillaires"},
	}},
}

type seedProduct struct {
	slug        string
	name        string
	priceDa     int64
	category    string
	description string
	benefits    []string
	images      []string
	stock       int
	featured    bool
}

var products = []seedProduct{
	{
		slug:     "huile-argan-pure",
		name:     "Huile d'Argan Pure BIO",
		priceDa:  8500,
		category: "Skincare",
		description: "Huile d'argan 100% pure et biologique, extraite à froid des arganiers " +
			"du sud algérien. Riche en vitamine E et acides gras essentiels, elle nourrit " +
			"intensément la peau et les cheveux.",
		benefits: []string{
			"Hydratation profonde et durable",
			"Anti-âge naturel riche en antioxydants",
			"Répare les cheveux abîmés",
			"Certifiée biologique 100% pure",
		},
		images: []string{
			"https://images.unsplash.com/photo-1608571423902-eed4a5ad8108?w=800",
			"https://images.unsplash.com/photo-1556228720-195a672e8a03?w=800",
		},
		stock:    45,
		featured: true,
	},
	{
		slug:     "savon-nigelle-alep",
		name:     "Savon Nigelle d'Alep",
		priceDa:  5500,
		category: "Skincare",
		description: "Savon traditionnel d'Alep enrichi à l'huile de nigelle, fabriqué selon " +
			"des méthodes ancestrales. Idéal pour les peaux sensibles et à problèmes.",
		benefits: []string{
			"Purifie et assainit la peau",
			"Convient aux peaux sensibles",
			"Fabrication artisanale traditionnelle",
		},
		images: []string{
			"https://images.unsplash.com/photo-1600857544200-242c05b0e2f4?w=800",
			"https://images.unsplash.com/photo-1598440947619-2c35fc9aa908?w=800",
		},
		stock:    60,
		featured: true,
	},
	{
		slug:     "creme-ghassoul-rose",
		name:     "Crème au Ghassoul & Rose",
		priceDa:  6800,
		category: "Skincare",
		description: "Masque crémeux au ghassoul volcanique de l'Atlas et eau de rose de Damas. " +
			"Nettoie en profondeur tout en respectant l'équilibre naturel de votre peau.",
		benefits: []string{
			"Nettoie et purifie en profondeur",
			"Resserre les pores visiblement",
			"Argile volcanique minérale",
		},
		images: []string{
			"https://images.unsplash.com/photo-1570172619644-dfd03ed5d881?w=800",
			"https://images.unsplash.com/photo-1556228852-80f4f5ba5dc2?w=800",
		},
		stock:    35,
		featured: true,
	},
	{
		slug:     "huile-figue-barbarie",
		name:     "Huile de Figue de Barbarie",
		priceDa:  12500,
		category: "Skincare",
		description: "Huile précieuse extraite des graines de figue de barbarie de Kabylie. " +
			"L'une des huiles les plus concentrées en vitamine E et stérols.",
		benefits: []string{
			"Anti-rides et anti-âge puissant",
			"Régénère les cellules cutanées",
			"Huile la plus riche en vitamine E",
		},
		images: []string{
			"https://images.unsplash.com/photo-1608248543803-ba4f8c70ae0b?w=800",
			"https://images.unsplash.com/photo-1612817288484-6f916006741a?w=800",
		},
		stock:    20,
		featured: true,
	},
	{
		slug:     "henne-neutre-cassia",
		name:     "Henné Neutre Cassia",
		priceDa:  4200,
		category: "Haircare",
		description: "Poudre de henné neutre (cassia obovata) pour soins capillaires en " +
			"profondeur. Fortifie les cheveux et leur donne du volume sans les colorer.",
		benefits: []string{
			"Fortifie la fibre capillaire",
			"Apporte volume et brillance",
			"Poudre 100% végétale pure",
		},
		images: []string{
			"https://images.unsplash.com/photo-1526047932273-341f2a7631f9?w=800",
			"https://images.unsplash.com/photo-1535585209827-a15fcdbc4c2d?w=800",
		},
		stock:    50,
		featured: false,
	},
	{
		slug:     "serum-cactus-aloe",
		name:     "Sérum Cactus & Aloe Vera",
		priceDa:  7800,
		category: "Skincare",
		description: "Sérum hydratant ultra-léger à base d'extrait de cactus du Sahara et aloe " +
			"vera. Pénètre rapidement sans laisser de film gras.",
		benefits: []string{
			"Hydratation légère non grasse",
			"Apaise les irritations",
			"Ingrédients du terroir algérien",
		},
		images: []string{
			"https://images.unsplash.com/photo-1620916566398-39f1143ab7be?w=800",
		},
		stock:    40,
		featured: true,
	},
}

func main() {
	var (
		databaseURL  string
		hashPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&hashPassword, "hash-password", "", "print the bcrypt hash for an admin password and exit")
	flag.Parse()

	if hashPassword != "" {
		hash, err := auth.HashPassword(hashPassword)
		if err != nil {
			slog.Error("hash password failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCategories(ctx, pool); err != nil {
		return errors.Wrap(err, "seed categories")
	}
	if err := seedProducts(ctx, pool); err != nil {
		return errors.Wrap(err, "seed products")
	}
	return nil
}

func seedCategories(ctx context.Context, pool *pgxpool.Pool) error {
	repo := postgres.NewCategoryRepository(pool)

	existing, err := repo.ListCategories(ctx)
	if err != nil {
		return errors.Wrap(err, "list categories")
	}
	bySlug := make(map[string]string, len(existing))
	for _, c := range existing {
		bySlug[c.Slug] = c.ID
	}

	for i, sc := range categories {
		id, ok := bySlug[sc.slug]
		if !ok {
			c := &product.Category{
				ID:           uuid.New().String(),
				Name:         sc.name,
				Slug:         sc.slug,
				DisplayOrder: i,
			}
			if err := repo.CreateCategory(ctx, c); err != nil {
				return errors.Wrapf(err, "create category %s", sc.slug)
			}
			id = c.ID
			slog.Info("created category", slog.String("slug", sc.slug))
		}

		for j, sub := range sc.subcategories {
			s := &product.Subcategory{
				ID:           uuid.New().String(),
				CategoryID:   id,
				Name:         sub.name,
				Slug:         sub.slug,
				DisplayOrder: j,
			}
			if err := repo.CreateSubcategory(ctx, s); err != nil {
				// Re-running the seed against a populated database is fine.
				slog.Warn("skip subcategory", slog.String("name", sub.name), slog.String("reason", err.Error()))
			}
		}
	}
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool) error {
	repo := postgres.NewProductRepository(pool)

	slog.Info("seeding products", slog.Int("count", len(products)))

	for _, sp := range products {
		if _, err := repo.GetBySlug(ctx, sp.slug); err == nil {
			slog.Info("product exists, skipping", slog.String("slug", sp.slug))
			continue
		} else if !errors.Is(err, product.ErrNotFound) {
			return errors.Wrapf(err, "lookup product %s", sp.slug)
		}

		p := &product.Product{
			ID:          uuid.New().String(),
			Slug:        sp.slug,
			Name:        sp.name,
			PriceDa:     sp.priceDa,
			Category:    sp.category,
			Description: sp.description,
			Benefits:    sp.benefits,
			Images:      sp.images,
			Stock:       sp.stock,
			IsFeatured:  sp.featured,
		}
		if err := repo.Create(ctx, p); err != nil {
			return errors.Wrapf(err, "create product %s", sp.slug)
		}
		slog.Info("created product", slog.String("slug", sp.slug), slog.String("name", sp.name))
	}
	return nil
}
