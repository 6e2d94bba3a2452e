package service

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"time"

	"tiendapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// toleranciaPago: a sale counts as fully paid when at most one cent remains.
var toleranciaPago = decimal.New(1, -2)

const fechaISO = "2006-01-02"

// ajusteStock is the net quantity one transaction moves for one product.
type ajusteStock struct {
	productoID uuid.UUID
	nombre     string
	cantidad   int
}

// consolidarAjustes merges lines of the same product and orders them by id.
// Every transaction that touches several products locks their rows in this
// order, so two carts listing the same products never deadlock.
func consolidarAjustes(ajustes []ajusteStock) []ajusteStock {
	out := make([]ajusteStock, 0, len(ajustes))
	pos := make(map[uuid.UUID]int, len(ajustes))
	for _, a := range ajustes {
		if i, ok := pos[a.productoID]; ok {
			out[i].cantidad += a.cantidad
			continue
		}
		pos[a.productoID] = len(out)
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b ajusteStock) int {
		return bytes.Compare(a.productoID[:], b.productoID[:])
	})
	return out
}

// enCentavos rejects amounts finer than one cent. Money columns are
// decimal(12,2) and every write would round on its own otherwise.
func enCentavos(campo string, d decimal.Decimal) (decimal.Decimal, error) {
	r := d.Round(2)
	if !r.Equal(d) {
		return d, fmt.Errorf("%w: %s = %s", ErrMontoPrecision, campo, d.String())
	}
	return r, nil
}

func parseID(raw, campo string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q", ErrIDInvalido, campo, raw)
	}
	return id, nil
}

func parseOptionalID(raw *string, campo string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := parseID(*raw, campo)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseRango turns "YYYY-MM-DD" or RFC3339 bounds into [desde, hasta).
// A date-only fin includes the whole day. Empty strings yield nil bounds.
func parseRango(inicio, fin string) (*time.Time, *time.Time, error) {
	var desde, hasta *time.Time
	if inicio != "" {
		t, _, err := parseFecha(inicio)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: fecha_inicio %q", ErrRangoFechas, inicio)
		}
		desde = &t
	}
	if fin != "" {
		t, soloFecha, err := parseFecha(fin)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: fecha_fin %q", ErrRangoFechas, fin)
		}
		if soloFecha {
			t = t.AddDate(0, 0, 1)
		} else {
			t = t.Add(time.Nanosecond)
		}
		hasta = &t
	}
	if desde != nil && hasta != nil && !desde.Before(*hasta) {
		return nil, nil, fmt.Errorf("%w: fecha_inicio posterior a fecha_fin", ErrRangoFechas)
	}
	return desde, hasta, nil
}

func parseFecha(s string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(fechaISO, s, time.Local); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, false, err
}

func metodoVentaValido(m string) bool {
	switch m {
	case model.MetodoEfectivo, model.MetodoTarjeta, model.MetodoTransferencia, model.MetodoCredito:
		return true
	}
	return false
}

func paginar(page, limit, defLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defLimit
	}
	return page, limit
}

func formatTime(t time.Time) string { return t.Format(time.RFC3339) }

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
