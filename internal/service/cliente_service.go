package service

import (
	"context"
	"fmt"
	"strings"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"
	"tiendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if err := s.nombreDisponible(ctx, nombre, uuid.Nil); err != nil {
		return nil, err
	}
	if req.LimiteCredito.IsNegative() {
		return nil, fmt.Errorf("%w: limite_credito", ErrMontoNegativo)
	}
	limite, err := enCentavos("limite_credito", req.LimiteCredito)
	if err != nil {
		return nil, err
	}
	c := &model.Cliente{
		Nombre:        nombre,
		Telefono:      req.Telefono,
		Email:         req.Email,
		Direccion:     req.Direccion,
		Tipo:          model.ClienteRegular,
		LimiteCredito: limite,
		Saldo:         decimal.Zero,
		Activo:        true,
	}
	if err := s.repo.CreateTx(ctx, nil, c); err != nil {
		return nil, err
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	filter.Page, filter.Limit = paginar(filter.Page, filter.Limit, 20)
	clientes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		data = append(data, clienteToResponse(&clientes[i]))
	}
	return &dto.ClienteListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Actualizar edits contact data and the credit limit. Lowering the limit
// below the current saldo is allowed; it only blocks new credit sales.
func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil {
		nombre := strings.TrimSpace(*req.Nombre)
		if !strings.EqualFold(nombre, c.Nombre) {
			if err := s.nombreDisponible(ctx, nombre, c.ID); err != nil {
				return nil, err
			}
		}
		c.Nombre = nombre
	}
	if req.Telefono != nil {
		c.Telefono = req.Telefono
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Direccion != nil {
		c.Direccion = req.Direccion
	}
	if req.LimiteCredito != nil {
		if req.LimiteCredito.IsNegative() {
			return nil, fmt.Errorf("%w: limite_credito", ErrMontoNegativo)
		}
		limite, err := enCentavos("limite_credito", *req.LimiteCredito)
		if err != nil {
			return nil, err
		}
		c.LimiteCredito = limite
		// An occasional client given a credit line becomes regular.
		if c.Tipo == model.ClienteOcasional && c.LimiteCredito.IsPositive() {
			c.Tipo = model.ClienteRegular
		}
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) Desactivar(ctx context.Context, id uuid.UUID) error {
	c, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if c.Saldo.IsPositive() {
		return fmt.Errorf("%w: %s", ErrClienteConSaldo, c.Saldo.StringFixed(2))
	}
	ok, err := s.repo.DesactivarSinSaldo(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrClienteConSaldo
	}
	return nil
}

func (s *clienteService) find(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrClienteNoEncontrado
		}
		return nil, err
	}
	return c, nil
}

func (s *clienteService) nombreDisponible(ctx context.Context, nombre string, self uuid.UUID) error {
	existing, err := s.repo.FindByNombreTx(ctx, nil, nombre)
	if err == nil && existing.ID != self {
		return fmt.Errorf("%w: %s", ErrClienteDuplicado, nombre)
	}
	if err != nil && !repository.IsNotFound(err) {
		return err
	}
	return nil
}
