package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// Server exposes the users and products collections the storefront client talks to
type Server struct {
	engine   *gin.Engine
	users    repository.UserRepository
	products repository.ProductRepository
}

func NewServer(users repository.UserRepository, products repository.ProductRepository) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), requestID())
	s := &Server{engine: r, users: users, products: products}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	users := s.engine.Group("/users")
	{
		users.GET("", s.listUsers)
		users.POST("", s.createUser)
		users.GET(":id", s.getUser)
		users.PATCH(":id", s.patchUser)
		users.PUT(":id", s.replaceUser)
	}

	products := s.engine.Group("/products")
	{
		products.GET("", s.listProducts)
		products.POST("", s.createProduct)
		products.GET(":id", s.getProduct)
		products.PATCH(":id", s.patchProduct)
		products.DELETE(":id", s.deleteProduct)
	}
}

const requestIDHeader = "X-Request-ID"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// User handlers

// @Summary List users
// @Tags users
// @Produce json
// @Param email query string false "Exact email"
// @Param password query string false "Exact password"
// @Success 200 {array} domain.User
// @Router /users [get]
func (s *Server) listUsers(c *gin.Context) {
	f := repository.UserFilter{Email: c.Query("email"), Password: c.Query("password")}
	list, err := s.users.List(c, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} domain.User
// @Failure 404 {object} map[string]string
// @Router /users/{id} [get]
func (s *Server) getUser(c *gin.Context) {
	u, err := s.users.GetByID(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param input body domain.User true "User"
// @Success 201 {object} domain.User
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /users [post]
func (s *Server) createUser(c *gin.Context) {
	var u domain.User
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := s.users.Create(c, &u); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// @Summary Patch user
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param input body repository.UserPatch true "Fields to merge"
// @Success 200 {object} domain.User
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/{id} [patch]
func (s *Server) patchUser(c *gin.Context) {
	var patch repository.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := s.users.Patch(c, c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary Replace user
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param input body domain.User true "Full record"
// @Success 200 {object} domain.User
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/{id} [put]
func (s *Server) replaceUser(c *gin.Context) {
	var u domain.User
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u.ID = c.Param("id")
	out, err := s.users.Replace(c, &u)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Product handlers

// @Summary List products
// @Tags products
// @Produce json
// @Param category query string false "Exact category"
// @Param brand query string false "Exact brand"
// @Param featured query bool false "Featured flag"
// @Param name_like query string false "Name contains"
// @Param price_gte query number false "Min price"
// @Param price_lte query number false "Max price"
// @Param _sort query string false "Sort field (price)"
// @Param _order query string false "asc or desc"
// @Success 200 {array} domain.Product
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	f := repository.ProductFilter{
		NameSubstring: c.Query("name_like"),
		Category:      c.Query("category"),
		Brand:         c.Query("brand"),
	}
	if v := c.Query("featured"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Featured = &b
		}
	}
	if v := c.Query("price_gte"); v != "" {
		if x, err := decimal.NewFromString(v); err == nil {
			f.MinPrice = &x
		}
	}
	if v := c.Query("price_lte"); v != "" {
		if x, err := decimal.NewFromString(v); err == nil {
			f.MaxPrice = &x
		}
	}
	if c.Query("_sort") == "price" {
		f.SortByPrice = repository.SortAsc
		if strings.EqualFold(c.Query("_order"), string(repository.SortDesc)) {
			f.SortByPrice = repository.SortDesc
		}
	}
	list, err := s.products.List(c, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	p, err := s.products.GetByID(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param input body domain.Product true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := s.products.Create(c, &p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary Patch product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param input body repository.ProductPatch true "Fields to merge"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{id} [patch]
func (s *Server) patchProduct(c *gin.Context) {
	var patch repository.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.products.Patch(c, c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete product
// @Tags products
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.products.Delete(c, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func writeError(c *gin.Context, err error) {
	c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
