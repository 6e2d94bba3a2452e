package router

import (
	"context"
	"time"

	"tiendapos/internal/config"
	"tiendapos/internal/handler"
	"tiendapos/internal/infra"
	"tiendapos/internal/middleware"
	"tiendapos/internal/policy"
	"tiendapos/internal/repository"
	"tiendapos/internal/service"
	"tiendapos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// ctx bounds background housekeeping (rate limiter cleanup).
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher, pol *policy.Policy) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.RunCleanup(5*time.Minute, ctx.Done())

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(limiter.Middleware())

	// ── Infrastructure ───────────────────────────────────────────────────────
	var seq repository.Sequencer
	if cfg.SequenceBackend == "redis" {
		seq = repository.NewRedisSequencer(rdb)
	} else {
		seq = repository.NewPostgresSequencer(db)
	}
	reportCache := infra.NewJSONCache(rdb, "reportes:", time.Duration(cfg.ReportCacheTTLSeconds)*time.Second)

	// ── Repositories ─────────────────────────────────────────────────────────
	tx := repository.NewTransactor(db)
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	pagoRepo := repository.NewPagoRepository(db)
	corteRepo := repository.NewCorteRepository(db)
	reporteRepo := repository.NewReporteRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	ventaSvc := service.NewVentaService(tx, ventaRepo, productoRepo, clienteRepo, usuarioRepo, seq, dispatcher, reportCache, cfg.NombreNegocio)
	pagoSvc := service.NewPagoService(tx, pagoRepo, ventaRepo, clienteRepo, seq)
	corteSvc := service.NewCorteService(corteRepo, ventaRepo)
	productoSvc := service.NewProductoService(productoRepo, proveedorRepo)
	clienteSvc := service.NewClienteService(clienteRepo)
	proveedorSvc := service.NewProveedorService(proveedorRepo)
	reporteSvc := service.NewReporteService(reporteRepo, reportCache)

	// ── Handlers ─────────────────────────────────────────────────────────────
	ventasH := handler.NewVentasHandler(ventaSvc)
	pagosH := handler.NewPagosHandler(pagoSvc)
	cortesH := handler.NewCortesHandler(corteSvc, pol)
	productosH := handler.NewProductosHandler(productoSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(map[string]handler.Check{
		"db":    handler.DBCheck(db),
		"redis": handler.RedisCheck(rdb),
	}, rdb))

	can := func(perm string) gin.HandlerFunc { return middleware.RequirePermission(pol, perm) }

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.POST("/ventas", can(policy.CrearVenta), ventasH.RegistrarVenta)
		v1.GET("/ventas", can(policy.VerVentas), ventasH.ListarVentas)
		v1.GET("/ventas/:id", can(policy.VerVentas), ventasH.ObtenerVenta)
		v1.GET("/ventas/:id/ticket", can(policy.VerVentas), ventasH.Ticket)
		v1.PATCH("/ventas/:id/cancelar", can(policy.CancelarVenta), ventasH.CancelarVenta)

		v1.POST("/pagos", can(policy.ProcesarPago), pagosH.RegistrarPago)
		v1.GET("/pagos/cliente/:id", can(policy.ProcesarPago), pagosH.PorCliente)
		v1.GET("/pagos/historial", can(policy.VerHistorialPagos), pagosH.Historial)

		cortes := v1.Group("/cortes")
		{
			cortes.POST("/abrir", can(policy.GestionarCaja), cortesH.Abrir)
			cortes.POST("/cerrar", can(policy.GestionarCaja), cortesH.Cerrar)
			cortes.GET("/actual", can(policy.GestionarCaja), cortesH.Actual)
			// scope (own vs all) is decided inside the handler
			cortes.GET("/historial", cortesH.Historial)
		}

		v1.GET("/productos", can(policy.VerProductos), productosH.Listar)
		v1.GET("/productos/:id", can(policy.VerProductos), productosH.ObtenerPorID)
		v1.POST("/productos", can(policy.CrearProducto), productosH.Crear)
		v1.PUT("/productos/:id", can(policy.EditarProducto), productosH.Actualizar)
		v1.DELETE("/productos/:id", can(policy.EliminarProducto), productosH.Desactivar)

		v1.GET("/clientes", can(policy.VerClientes), clientesH.Listar)
		v1.GET("/clientes/:id", can(policy.VerClientes), clientesH.ObtenerPorID)
		v1.POST("/clientes", can(policy.GestionarClientes), clientesH.Crear)
		v1.PUT("/clientes/:id", can(policy.GestionarClientes), clientesH.Actualizar)
		v1.DELETE("/clientes/:id", can(policy.EliminarCliente), clientesH.Desactivar)

		prov := v1.Group("/proveedores", can(policy.GestionarProveedores))
		{
			prov.POST("", proveedoresH.Crear)
			prov.GET("", proveedoresH.Listar)
			prov.GET("/estadisticas", proveedoresH.Estadisticas)
			prov.GET("/:id", proveedoresH.ObtenerPorID)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.DELETE("/:id", proveedoresH.Eliminar)
			prov.PATCH("/:id/reactivar", proveedoresH.Reactivar)
		}

		rep := v1.Group("/reportes")
		{
			rep.GET("/ventas-por-fecha", can(policy.VerReportes), reportesH.VentasPorFecha)
			rep.GET("/ventas-por-fecha.xlsx", can(policy.DescargarReportes), reportesH.VentasPorFechaXLSX)
			rep.GET("/ventas-por-seccion", can(policy.VerReportes), reportesH.VentasPorSeccion)
			rep.GET("/productos-mas-vendidos", can(policy.VerReportes), reportesH.ProductosMasVendidos)
			rep.GET("/cuentas-por-cobrar", can(policy.VerReportes), reportesH.CuentasPorCobrar)
			rep.GET("/inventario-bajo", can(policy.VerReportes), reportesH.InventarioBajo)
			rep.GET("/resumen-ventas", can(policy.VerReportes), reportesH.ResumenVentas)
		}
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
