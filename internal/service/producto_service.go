package service

import (
	"context"
	"fmt"
	"strings"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"
	"tiendapos/internal/repository"

	"github.com/google/uuid"
)

// ProductoService defines the business logic contract for products.
// Stock is not editable here: it only moves through sales and cancellations.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type productoService struct {
	repo          repository.ProductoRepository
	proveedorRepo repository.ProveedorRepository
}

func NewProductoService(repo repository.ProductoRepository, proveedorRepo repository.ProveedorRepository) ProductoService {
	return &productoService{repo: repo, proveedorRepo: proveedorRepo}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	codigo := strings.TrimSpace(req.Codigo)
	if _, err := s.repo.FindByCodigo(ctx, codigo); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCodigoDuplicado, codigo)
	} else if !repository.IsNotFound(err) {
		return nil, err
	}
	if !req.PrecioVenta.IsPositive() {
		return nil, ErrPrecioInvalido
	}
	precioVenta, err := enCentavos("precio_venta", req.PrecioVenta)
	if err != nil {
		return nil, err
	}
	precioCompra, err := enCentavos("precio_compra", req.PrecioCompra)
	if err != nil {
		return nil, err
	}
	proveedorID, err := s.resolverProveedor(ctx, req.ProveedorID)
	if err != nil {
		return nil, err
	}

	unidad := req.UnidadMedida
	if unidad == "" {
		unidad = "pieza"
	}
	p := &model.Producto{
		Codigo:       codigo,
		Nombre:       strings.TrimSpace(req.Nombre),
		Descripcion:  req.Descripcion,
		Seccion:      req.Seccion,
		PrecioCompra: precioCompra,
		PrecioVenta:  precioVenta,
		Stock:        req.Stock,
		StockMinimo:  req.StockMinimo,
		UnidadMedida: unidad,
		ProveedorID:  proveedorID,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrCodigoDuplicado, codigo)
		}
		return nil, err
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	filter.Page, filter.Limit = paginar(filter.Page, filter.Limit, 20)
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, productoToResponse(&productos[i]))
	}
	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.ProductoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.Seccion != nil {
		p.Seccion = *req.Seccion
	}
	if req.PrecioCompra != nil {
		precio, err := enCentavos("precio_compra", *req.PrecioCompra)
		if err != nil {
			return nil, err
		}
		p.PrecioCompra = precio
	}
	if req.PrecioVenta != nil {
		if !req.PrecioVenta.IsPositive() {
			return nil, ErrPrecioInvalido
		}
		precio, err := enCentavos("precio_venta", *req.PrecioVenta)
		if err != nil {
			return nil, err
		}
		p.PrecioVenta = precio
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.UnidadMedida != nil {
		p.UnidadMedida = *req.UnidadMedida
	}
	if req.ProveedorID != nil {
		proveedorID, err := s.resolverProveedor(ctx, req.ProveedorID)
		if err != nil {
			return nil, err
		}
		p.ProveedorID = proveedorID
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := productoToResponse(p)
	return &resp, nil
}

// Desactivar is a soft delete; past sales keep referencing the product.
func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *productoService) find(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProductoNoEncontrado
		}
		return nil, err
	}
	return p, nil
}

func (s *productoService) resolverProveedor(ctx context.Context, raw *string) (*uuid.UUID, error) {
	id, err := parseOptionalID(raw, "proveedor_id")
	if err != nil || id == nil {
		return nil, err
	}
	prov, err := s.proveedorRepo.FindByID(ctx, *id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProveedorNoEncontrado
		}
		return nil, err
	}
	if !prov.Activo {
		return nil, ErrProveedorNoEncontrado
	}
	return id, nil
}
