package service

import (
	"context"
	"strings"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"
	"tiendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProveedorService interface {
	Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context, filter dto.ProveedorFilter) (*dto.ProveedorListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	Estadisticas(ctx context.Context) (*dto.ProveedorEstadisticasResponse, error)
}

type proveedorService struct {
	repo repository.ProveedorRepository
}

func NewProveedorService(repo repository.ProveedorRepository) ProveedorService {
	return &proveedorService{repo: repo}
}

func (s *proveedorService) Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	p := &model.Proveedor{Activo: true}
	applyProveedor(p, req)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := proveedorToResponse(p)
	return &resp, nil
}

func (s *proveedorService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := proveedorToResponse(p)
	return &resp, nil
}

func (s *proveedorService) Listar(ctx context.Context, filter dto.ProveedorFilter) (*dto.ProveedorListResponse, error) {
	filter.Page, filter.Limit = paginar(filter.Page, filter.Limit, 20)
	filter.Buscar = strings.TrimSpace(filter.Buscar)
	proveedores, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProveedorResponse, 0, len(proveedores))
	for i := range proveedores {
		data = append(data, proveedorToResponse(&proveedores[i]))
	}
	return &dto.ProveedorListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProveedor(p, req)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := proveedorToResponse(p)
	return &resp, nil
}

// Eliminar is a soft delete; products keep their proveedor_id.
func (s *proveedorService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.repo.SetActivo(ctx, id, false)
}

func (s *proveedorService) Reactivar(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Activo {
		if err := s.repo.SetActivo(ctx, id, true); err != nil {
			return nil, err
		}
		p.Activo = true
	}
	resp := proveedorToResponse(p)
	return &resp, nil
}

// Estadisticas counts suppliers by state; the payment-term breakdown covers
// active ones only.
func (s *proveedorService) Estadisticas(ctx context.Context) (*dto.ProveedorEstadisticasResponse, error) {
	activos, inactivos, err := s.repo.ContarPorEstado(ctx)
	if err != nil {
		return nil, err
	}
	conteos, err := s.repo.ContarPorCondicion(ctx)
	if err != nil {
		return nil, err
	}
	total := activos + inactivos
	resp := &dto.ProveedorEstadisticasResponse{
		Total:             total,
		Activos:           activos,
		Inactivos:         inactivos,
		PorcentajeActivos: decimal.Zero,
		PorCondicion:      make([]dto.ProveedoresPorCondicion, 0, len(conteos)),
	}
	if total > 0 {
		resp.PorcentajeActivos = decimal.NewFromInt(activos * 100).Div(decimal.NewFromInt(total)).Round(2)
	}
	for _, c := range conteos {
		resp.PorCondicion = append(resp.PorCondicion, dto.ProveedoresPorCondicion{CondicionesPago: c.CondicionesPago, Total: c.Total})
	}
	return resp, nil
}

func (s *proveedorService) find(ctx context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProveedorNoEncontrado
		}
		return nil, err
	}
	return p, nil
}

func applyProveedor(p *model.Proveedor, req dto.CrearProveedorRequest) {
	p.Nombre = strings.TrimSpace(req.Nombre)
	p.Contacto = req.Contacto
	p.Telefono = req.Telefono
	p.Email = req.Email
	p.Direccion = req.Direccion
	p.CondicionesPago = req.CondicionesPago
}
