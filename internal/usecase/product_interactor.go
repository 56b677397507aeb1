package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/GoArmGo/gcapi/internal/core/ports"
	"github.com/GoArmGo/gcapi/internal/domain"
)

// productUseCase implements ProductUseCase
type productUseCase struct {
	productStorage ports.ProductStorage
	fileStorage    ports.FileStorage // nil, если MinIO не настроен
	logger         *slog.Logger
}

// NewProductUseCase создает новый экземпляр ProductUseCase.
// fileStorage может быть nil, тогда UploadImage возвращает domain.ErrFileStorageDisabled.
func NewProductUseCase(productStorage ports.ProductStorage, fileStorage ports.FileStorage, logger *slog.Logger) ProductUseCase {
	return &productUseCase{
		productStorage: productStorage,
		fileStorage:    fileStorage,
		logger:         logger,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	in.Price = roundPrice(in.Price)
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if err := validateProductFields(&in.Category, &in.Price, &in.Stock); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
		Stock:    in.Stock,
	}
	if err := uc.productStorage.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	return product, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	product, err := uc.productStorage.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	return product, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, skip, limit int) ([]domain.Product, error) {
	if err := ValidatePage(skip, limit); err != nil {
		return nil, err
	}
	products, err := uc.productStorage.ListProducts(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	return products, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, id uint, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Price != nil {
		price := roundPrice(*patch.Price)
		patch.Price = &price
	}
	if err := validateProductFields(patch.Category, patch.Price, patch.Stock); err != nil {
		return nil, err
	}
	// image_url меняется только через загрузку изображения
	patch.ImageURL = nil

	product, err := uc.productStorage.UpdateProduct(ctx, id, patch.Fields())
	if err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	return product, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id uint) error {
	deleted, err := uc.productStorage.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("usecase: %w", err)
	}
	if !deleted {
		return fmt.Errorf("usecase: товар %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// UploadImage загружает изображение в S3 под ключом products/{id}/{uuid}{ext}
// и сохраняет полученный URL в товаре.
func (uc *productUseCase) UploadImage(ctx context.Context, id uint, filename, contentType string, file io.Reader) (*domain.Product, error) {
	if uc.fileStorage == nil {
		return nil, domain.ErrFileStorageDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, domain.NewValidationError("File must be an image")
	}

	// проверяем наличие товара до загрузки, чтобы не плодить объекты в бакете
	if _, err := uc.productStorage.GetProductByID(ctx, id); err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}

	key := fmt.Sprintf("products/%d/%s%s", id, uuid.NewString(), imageExt(filename))
	imageURL, err := uc.fileStorage.UploadFile(ctx, key, file, contentType)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка загрузки изображения товара %d в S3: %w", id, err)
	}
	if len(imageURL) > MaxImageURLLen {
		uc.removeObject(ctx, key)
		return nil, fmt.Errorf("usecase: URL изображения длиннее %d символов: %w", MaxImageURLLen, domain.ErrIntegrity)
	}

	product, err := uc.productStorage.UpdateProduct(ctx, id, domain.ProductPatch{ImageURL: &imageURL}.Fields())
	if err != nil {
		// товар мог быть удален между проверкой и обновлением
		uc.removeObject(ctx, key)
		return nil, fmt.Errorf("usecase: %w", err)
	}

	uc.logger.Info("product image uploaded", "product_id", id, "key", key)
	return product, nil
}

// removeObject удаляет объект, на который не ссылается ни один товар.
func (uc *productUseCase) removeObject(ctx context.Context, key string) {
	if err := uc.fileStorage.DeleteFile(ctx, key); err != nil {
		uc.logger.Warn("failed to remove orphaned image", "key", key, "error", err)
	}
}
