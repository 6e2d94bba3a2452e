// Command seed creates the demo operators and a small catalog, then prints a
// development bearer token per operator. Re-running it is safe.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"tiendapos/internal/config"
	"tiendapos/internal/infra"
	"tiendapos/internal/middleware"
	"tiendapos/internal/model"
	"tiendapos/internal/policy"
	"tiendapos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type operador struct {
	username, nombre, rol string
}

var operadores = []operador{
	{"admin", "Administrador", policy.RolAdmin},
	{"caja1", "Cajero Turno Mañana", policy.RolCajero},
	{"contador", "Contabilidad", policy.RolReportes},
}

type productoDemo struct {
	codigo, nombre, seccion, precio string
	stock, minimo                   int
}

var catalogo = []productoDemo{
	{"ABA-0001", "Arroz 1kg", model.SeccionAbarrotes, "25.00", 40, 10},
	{"ABA-0002", "Frijol negro 1kg", model.SeccionAbarrotes, "32.50", 30, 8},
	{"ABA-0003", "Aceite 900ml", model.SeccionAbarrotes, "41.90", 20, 5},
	{"PAP-0001", "Cuaderno profesional", model.SeccionPapeleria, "42.50", 25, 5},
	{"PAP-0002", "Lápiz HB", model.SeccionPapeleria, "3.50", 200, 50},
	{"PAP-0003", "Pegamento en barra", model.SeccionPapeleria, "18.00", 4, 6},
}

func main() {
	password := flag.String("password", "1234", "password for every demo operator")
	tokenTTL := flag.Duration("token-ttl", 12*time.Hour, "lifetime of the printed dev tokens")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	usuarios := repository.NewUsuarioRepository(db)
	for _, op := range operadores {
		u := &model.Usuario{Username: op.username, Nombre: op.nombre, PasswordHash: string(hash), Rol: op.rol, Activo: true}
		if err := usuarios.Upsert(ctx, u); err != nil {
			log.Fatal().Err(err).Str("username", op.username).Msg("upsert operador")
		}
		saved, err := usuarios.FindByUsername(ctx, op.username)
		if err != nil {
			log.Fatal().Err(err).Str("username", op.username).Msg("leer operador")
		}
		if cfg.JWTSecret == "" {
			continue
		}
		tok, err := devToken(cfg.JWTSecret, saved, *tokenTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("firmar token")
		}
		fmt.Printf("%-10s %-8s %s\n", saved.Username, saved.Rol, tok)
	}
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET vacio: no se imprimen tokens")
	}

	productos := repository.NewProductoRepository(db)
	creados := 0
	for _, p := range catalogo {
		_, err := productos.FindByCodigo(ctx, p.codigo)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatal().Err(err).Str("codigo", p.codigo).Msg("buscar producto")
		}
		err = productos.Create(ctx, &model.Producto{
			Codigo:       p.codigo,
			Nombre:       p.nombre,
			Seccion:      p.seccion,
			PrecioVenta:  decimal.RequireFromString(p.precio),
			Stock:        p.stock,
			StockMinimo:  p.minimo,
			UnidadMedida: "pieza",
			Activo:       true,
		})
		if err != nil {
			log.Fatal().Err(err).Str("codigo", p.codigo).Msg("crear producto")
		}
		creados++
	}
	log.Info().Int("operadores", len(operadores)).Int("productos_nuevos", creados).Msg("seed completo")
}

func devToken(secret string, u *model.Usuario, ttl time.Duration) (string, error) {
	claims := middleware.JWTClaims{
		UserID:   u.ID.String(),
		Username: u.Username,
		Rol:      u.Rol,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
