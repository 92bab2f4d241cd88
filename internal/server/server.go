package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/smartkitchen/internal/alert"
	"github.com/dukerupert/smartkitchen/internal/backup"
	"github.com/dukerupert/smartkitchen/internal/events"
	"github.com/dukerupert/smartkitchen/internal/handler"
	"github.com/dukerupert/smartkitchen/internal/inventory"
	"github.com/dukerupert/smartkitchen/internal/live"
	"github.com/dukerupert/smartkitchen/internal/middleware"
	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dukerupert/smartkitchen/internal/push"
	"github.com/dukerupert/smartkitchen/internal/store"
)

// Options carries the collaborators built outside the server.
type Options struct {
	Alert         alert.Config
	Backup        backup.Config
	VAPIDPublic   string
	VAPIDPrivate  string
	Sender        alert.Sender
	Publisher     events.Publisher
	SecureCookies bool
}

type Server struct {
	db       *sql.DB
	registry *live.Registry

	authH       *handler.AuthHandler
	restaurantH *handler.RestaurantHandler
	menuH       *handler.MenuHandler
	ingredientH *handler.IngredientHandler
	recipeH     *handler.RecipeHandler
	cartH       *handler.CartHandler
	orderH      *handler.OrderHandler
	supplierH   *handler.SupplierHandler
	inventoryH  *handler.InventoryHandler
	pushH       *handler.PushHandler
	backupH     *handler.BackupHandler

	userStore     *store.UserStore
	sessionStore  *store.SessionStore
	rateLimiter   *middleware.RateLimiter
	scanner       *alert.Scanner
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, opts Options, logger *slog.Logger) *Server {
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	registry := live.NewRegistry(logger)

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	restaurantStore := store.NewRestaurantStore(db)
	menuStore := store.NewMenuItemStore(db)
	ingredientStore := store.NewIngredientStore(db)
	recipeStore := store.NewRecipeStore(db)
	cartStore := store.NewCartStore(db)
	orderStore := store.NewOrderStore(db)
	categoryStore := store.NewSupplierCategoryStore(db)
	ledger := store.NewSupplierMessageStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	pushSvc := push.NewService(opts.VAPIDPublic, opts.VAPIDPrivate, pushStore, logger)
	notifier := handler.NewNotifier(registry, opts.Publisher, pushSvc, logger.With("component", "notify"))
	inv := inventory.NewService(store.NewStockStore(db), logger)
	scanner := alert.NewScanner(ingredientStore, categoryStore, userStore, ledger, opts.Sender, opts.Alert, logger)
	backupMgr := backup.NewManager(opts.Backup, db, backupStore, logger)

	return &Server{
		db:       db,
		registry: registry,

		authH:       handler.NewAuthHandler(userStore, sessionStore, restaurantStore, opts.SecureCookies, logger.With("component", "auth")),
		restaurantH: handler.NewRestaurantHandler(restaurantStore, logger.With("component", "restaurant")),
		menuH:       handler.NewMenuHandler(menuStore, logger.With("component", "menu")),
		ingredientH: handler.NewIngredientHandler(ingredientStore, logger.With("component", "ingredient")),
		recipeH:     handler.NewRecipeHandler(recipeStore, menuStore, ingredientStore, logger.With("component", "recipe")),
		cartH:       handler.NewCartHandler(cartStore, menuStore, logger.With("component", "cart")),
		orderH:      handler.NewOrderHandler(orderStore, menuStore, userStore, cartStore, inv, notifier, logger.With("component", "order")),
		supplierH:   handler.NewSupplierHandler(categoryStore, userStore, logger.With("component", "supplier")),
		inventoryH:  handler.NewInventoryHandler(scanner, ledger, opts.Sender, logger.With("component", "inventory_admin")),
		pushH:       handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler")),
		backupH:     handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup_handler")),

		userStore:     userStore,
		sessionStore:  sessionStore,
		rateLimiter:   middleware.NewRateLimiter(10, time.Minute),
		scanner:       scanner,
		backupManager: backupMgr,
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the login rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Scanner returns the low-stock scanner.
func (s *Server) Scanner() *alert.Scanner {
	return s.scanner
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("POST /api/user/auth/signup", s.rateLimited(s.authH.Signup))
	outerMux.HandleFunc("POST /api/user/auth/login", s.rateLimited(s.authH.Login))
	outerMux.HandleFunc("GET /api/restaurants", s.restaurantH.List)
	outerMux.HandleFunc("GET /api/restaurants/open", s.restaurantH.ListOpen)
	outerMux.HandleFunc("GET /api/restaurants/search", s.restaurantH.Search)
	outerMux.HandleFunc("GET /api/menu", s.menuH.List)
	outerMux.HandleFunc("GET /api/best-sellers", s.orderH.BestSellers)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"status":"` + status + `"}`))
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	return middleware.RateLimit(s.rateLimiter, middleware.RealIP)(h).ServeHTTP
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	owner := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireRole(model.RoleOwner)(h)
	}
	ownerOrPartner := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireRole(model.RoleOwner, model.RoleDeliveryPartner)(h)
	}

	// Session
	mux.HandleFunc("POST /api/user/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/user/profile", s.authH.Profile)
	mux.HandleFunc("PUT /api/user/profile", s.authH.UpdateProfile)

	// Restaurants
	mux.Handle("GET /api/owner/restaurant", owner(s.restaurantH.Mine))
	mux.Handle("POST /api/owner/restaurant", owner(s.restaurantH.Create))
	mux.Handle("PUT /api/owner/restaurant", owner(s.restaurantH.Update))

	// Menu
	mux.Handle("POST /api/menu", owner(s.menuH.Create))
	mux.Handle("PUT /api/menu/{id}", owner(s.menuH.Update))
	mux.Handle("DELETE /api/menu/{id}", owner(s.menuH.Delete))

	// Ingredients
	mux.Handle("GET /api/ingredients", owner(s.ingredientH.List))
	mux.Handle("POST /api/ingredients", owner(s.ingredientH.Create))
	mux.Handle("PUT /api/ingredients/{id}", owner(s.ingredientH.Update))
	mux.Handle("GET /api/ingredients/types", owner(s.ingredientH.Types))
	mux.Handle("GET /api/ingredients/calc/percentages", owner(s.ingredientH.Percentages))

	// Recipes
	mux.Handle("GET /api/recipes", owner(s.recipeH.List))
	mux.Handle("POST /api/recipes", owner(s.recipeH.Create))
	mux.Handle("POST /api/recipes/batch", owner(s.recipeH.CreateBatch))
	mux.Handle("DELETE /api/recipes/{id}", owner(s.recipeH.Delete))
	mux.Handle("GET /api/recipes/menu-item/{id}", owner(s.recipeH.ByMenuItem))
	mux.Handle("DELETE /api/recipes/menu-item/{id}", owner(s.recipeH.DeleteByMenuItem))

	// Cart
	mux.HandleFunc("GET /api/cart", s.cartH.Get)
	mux.HandleFunc("POST /api/cart/add", s.cartH.Add)
	mux.HandleFunc("PUT /api/cart/update", s.cartH.Update)
	mux.HandleFunc("DELETE /api/cart/remove", s.cartH.Remove)

	// Orders
	mux.Handle("GET /api/orders", owner(s.orderH.List))
	mux.HandleFunc("POST /api/orders", s.orderH.Create)
	mux.HandleFunc("GET /api/orders/my", s.orderH.Mine)
	mux.Handle("GET /api/orders/stream", live.HandleSSE(s.registry, s.logger.With("component", "sse")))
	mux.HandleFunc("GET /api/orders/{id}", s.orderH.Get)
	mux.Handle("PUT /api/orders/{id}/status", ownerOrPartner(s.orderH.UpdateStatus))
	mux.Handle("PUT /api/orders/{id}/assign", owner(s.orderH.Assign))
	mux.Handle("POST /api/orders/{id}/update-inventory", owner(s.orderH.UpdateInventory))
	mux.Handle("POST /api/orders/{id}/accept", owner(s.orderH.Accept))
	mux.Handle("GET /ws", live.HandleWebSocket(s.registry, s.logger.With("component", "websocket")))

	// Supplier categories
	mux.HandleFunc("GET /api/suppliers", s.supplierH.ListSuppliers)
	mux.HandleFunc("GET /api/supplier-categories", s.supplierH.List)
	mux.HandleFunc("GET /api/supplier-categories/supplier/{userId}", s.supplierH.BySupplier)
	mux.HandleFunc("GET /api/supplier-categories/category/{name}", s.supplierH.ByCategory)
	mux.Handle("POST /api/supplier-categories/supplier/{userId}/category", owner(s.supplierH.Assign))
	mux.Handle("PUT /api/supplier-categories/supplier/{userId}/categories", owner(s.supplierH.Replace))
	mux.Handle("DELETE /api/supplier-categories/category/{name}", owner(s.supplierH.DeleteCategory))
	mux.Handle("DELETE /api/supplier-categories/supplier/{userId}/categories", owner(s.supplierH.DeleteForSupplier))

	// Inventory admin
	mux.Handle("POST /api/inventory/check-now", owner(s.inventoryH.CheckNow))
	mux.Handle("GET /api/inventory/low-stock", owner(s.ingredientH.LowStock))
	mux.Handle("GET /api/inventory/alerts", owner(s.inventoryH.Alerts))
	mux.Handle("POST /api/whatsapp/send-text", owner(s.inventoryH.SendText))

	// Push
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.List)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)

	// Backups
	mux.Handle("POST /api/admin/backups", owner(s.backupH.Create))
	mux.Handle("GET /api/admin/backups", owner(s.backupH.List))
}
