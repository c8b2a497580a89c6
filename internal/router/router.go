package router

import (
	"time"

	"superbravo/internal/config"
	"superbravo/internal/handler"
	"superbravo/internal/infra"
	"superbravo/internal/middleware"
	"superbravo/internal/realtime"
	"superbravo/internal/repository"
	"superbravo/internal/service"
	"superbravo/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
//
// rdb may be nil: sales then notify the local hub directly and no receipt
// jobs are queued. hub feeds the SSE streams of this node.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, hub *realtime.Hub) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	loc := cfg.Location()

	// ── Realtime / async ─────────────────────────────────────────────────────
	var notifier realtime.Notifier = hub
	var dispatcher service.ComprobanteDispatcher
	if rdb != nil {
		cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Name: "redis-publish"})
		notifier = realtime.NewRedisNotifier(rdb, cb, hub)
		dispatcher = worker.NewDispatcher(rdb)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	historialRepo := repository.NewHistorialRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	historialSvc := service.NewHistorialService(historialRepo)
	productoSvc := service.NewProductoService(productoRepo, historialSvc)
	secuenciador := service.NewSecuenciadorFactura(ventaRepo, loc)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, historialSvc, secuenciador,
		notifier, dispatcher, cfg.BusinessName, loc, time.Now)
	reporteSvc := service.NewReporteService(ventaRepo, loc, time.Now)

	// ── Handlers ─────────────────────────────────────────────────────────────
	ventasH := handler.NewVentasHandler(ventaSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	historialH := handler.NewHistorialHandler(historialSvc)
	eventosH := handler.NewEventosHandler(hub)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, hub))

	// The SSE stream stays open; it is registered outside the timeout group.
	r.GET("/v1/ventas/eventos", eventosH.Stream)

	v1 := r.Group("/v1", middleware.Timeout(cfg.RequestTimeout))
	{
		ventas := v1.Group("/ventas")
		{
			ventas.POST("", ventasH.RegistrarVenta)
			ventas.GET("", reportesH.ListarVentas)
			ventas.GET("/por-dia", reportesH.VentasPorDia)
			ventas.GET("/proximo-codigo-factura", ventasH.ProximoCodigoFactura)
			ventas.GET("/mensual", reportesH.VentasMensuales)
			ventas.GET("/anual", reportesH.VentasAnuales)
			ventas.GET("/mensual-por-gestor", reportesH.VentasMensualesPorGestor)
			ventas.GET("/producto-top-diario", reportesH.ProductoTopDiario)
			ventas.GET("/vendidos-por-fecha", reportesH.VendidosPorFecha)
			ventas.GET("/vendidos-totales", reportesH.VendidosTotales)
			ventas.GET("/:id", ventasH.ObtenerVenta)
			ventas.GET("/:id/comprobante", ventasH.DescargarComprobante)
			ventas.DELETE("/:id", ventasH.EliminarVenta)
		}

		prods := v1.Group("/productos")
		{
			prods.POST("", productosH.Crear)
			prods.GET("", productosH.Listar)
			prods.GET("/:id", productosH.ObtenerPorID)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Eliminar)
		}

		v1.GET("/historial/producto/:productoId", historialH.ListarPorProducto)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
