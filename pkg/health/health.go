package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("health", fx.Provide(ProvideHealth))

type Dependency struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Health struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Deps    []Dependency `json:"deps"`
}

type HealthService interface {
	Liveness(c *gin.Context)
	Readiness(c *gin.Context)
}

type health struct {
	redis *redis.Client
}

type HealthParams struct {
	fx.In
	Redis *redis.Client `optional:"true"`
}

func ProvideHealth(p HealthParams) HealthService {
	return &health{redis: p.Redis}
}

func (h *health) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, &Health{
		Status:  "healthly",
		Message: "OK",
	})
}

func (h *health) Readiness(c *gin.Context) {
	this := &Health{
		Status:  "healthly",
		Message: "OK",
	}

	deps := make([]Dependency, 0)
	if h.redis != nil {
		dep := Dependency{
			Name:    "redis",
			Status:  "healthly",
			Message: "OK",
		}

		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			dep.Status = "unhealthly"
			dep.Message = err.Error()
			this.Status = "unhealthly"
		}

		deps = append(deps, dep)
	}

	this.Deps = deps

	code := http.StatusOK
	if this.Status != "healthly" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, this)
}
