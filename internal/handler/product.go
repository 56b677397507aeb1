package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/GoArmGo/gcapi/internal/domain"
	"github.com/GoArmGo/gcapi/internal/usecase"
)

const maxImageBytes = 10 << 20

// ProductHandler — обработчик HTTP-запросов для работы с товарами.
type ProductHandler struct {
	productUseCase usecase.ProductUseCase
	logger         *slog.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{productUseCase: uc, logger: logger}
}

var productErrors = errorMessages{NotFound: "Product not found", Integrity: "Create failed"}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, productErrors, h.logger)
		return
	}
	if req.Name == nil {
		respondWithError(w, http.StatusBadRequest, "Field required: name", h.logger)
		return
	}

	in := usecase.CreateProductInput{Name: *req.Name}
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.Price != nil {
		in.Price = *req.Price
	}
	if req.Stock != nil {
		in.Stock = *req.Stock
	}

	product, err := h.productUseCase.CreateProduct(r.Context(), in)
	if err != nil {
		respondWithDomainError(w, r, err, productErrors, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, toProductResponse(product), h.logger)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pageParams(r)
	if err != nil {
		respondWithDomainError(w, r, err, productErrors, h.logger)
		return
	}

	products, err := h.productUseCase.ListProducts(r.Context(), skip, limit)
	if err != nil {
		respondWithDomainError(w, r, err, productErrors, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toProductResponses(products), h.logger)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		respondWithDomainError(w, r, err, productErrors, h.logger)
		return
	}

	product, err := h.productUseCase.GetProduct(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, err, productErrors, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toProductResponse(product), h.logger)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		respondWithDomainError(w, r, err, productErrors, h.logger)
		return
	}

	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, productErrors, h.logger)
		return
	}

	product, err := h.productUseCase.UpdateProduct(r.Context(), id, domain.ProductPatch{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Stock:    req.Stock,
	})
	if err != nil {
		respondWithDomainError(w, r, err, errorMessages{NotFound: "Product not found", Integrity: "Update failed"}, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toProductResponse(product), h.logger)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		respondWithDomainError(w, r, err, productErrors, h.logger)
		return
	}

	if err := h.productUseCase.DeleteProduct(r.Context(), id); err != nil {
		respondWithDomainError(w, r, err, productErrors, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage — принимает multipart поле "file" и сохраняет его как изображение товара.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		respondWithDomainError(w, r, err, productErrors, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "File too large", h.logger)
			return
		}
		respondWithError(w, http.StatusBadRequest, "Field required: file", h.logger)
		return
	}
	defer file.Close()

	contentType, err := detectContentType(file, header)
	if err != nil {
		h.logger.Error("failed to read uploaded file", "error", err)
		respondWithError(w, http.StatusBadRequest, "Invalid file", h.logger)
		return
	}

	product, err := h.productUseCase.UploadImage(r.Context(), id, header.Filename, contentType, file)
	if err != nil {
		respondWithDomainError(w, r, err, productErrors, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toProductResponse(product), h.logger)
}

// detectContentType берет тип из заголовка части, а если его нет, определяет по первым байтам.
func detectContentType(file multipart.File, header *multipart.FileHeader) (string, error) {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct, nil
	}

	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}
