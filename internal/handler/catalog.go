package handler

import (
    "context"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/railbook/train-reservation/internal/model"
    "github.com/railbook/train-reservation/internal/repository"
)

// Catalog is the read-only slice of the train catalog the HTTP layer
// consumes.  Satisfied by *repository.TrainRepo.
type Catalog interface {
    List(ctx context.Context) ([]model.Train, error)
    GetByID(ctx context.Context, id uint64) (*model.Train, error)
    ListClasses(ctx context.Context, trainID uint64) ([]model.TrainClass, error)
}

// CatalogHandler exposes the public browse endpoints.  Responses are
// cached by the Redis response-cache middleware; the catalog changes
// rarely and these endpoints take the brunt of pre-tatkal traffic.
type CatalogHandler struct {
    Trains Catalog
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(trains Catalog) *CatalogHandler {
    if trains == nil {
        panic("nil catalog passed to NewCatalogHandler")
    }
    return &CatalogHandler{Trains: trains}
}

type trainResponse struct {
    ID          uint64 `json:"id"`
    Number      string `json:"number"`
    Name        string `json:"name"`
    Source      string `json:"source"`
    Destination string `json:"destination"`
    DistanceKm  int    `json:"distance_km"`
}

type trainClassResponse struct {
    Code       string `json:"code"`
    Name       string `json:"name"`
    FarePaise  int64  `json:"fare_paise"`
    TotalSeats int    `json:"total_seats"`
}

// ListTrains handles GET /v1/trains.
func (h *CatalogHandler) ListTrains(c echo.Context) error {
    trains, err := h.Trains.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]trainResponse, 0, len(trains))
    for _, t := range trains {
        out = append(out, trainResponse{
            ID: t.ID, Number: t.Number, Name: t.Name,
            Source: t.Source, Destination: t.Destination, DistanceKm: t.DistanceKm,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"trains": out})
}

// ListTrainClasses handles GET /v1/trains/:id/classes.
func (h *CatalogHandler) ListTrainClasses(c echo.Context) error {
    trainID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid train id"})
    }
    if _, err := h.Trains.GetByID(c.Request().Context(), trainID); err != nil {
        if errors.Is(err, repository.ErrTrainNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "train not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    classes, err := h.Trains.ListClasses(c.Request().Context(), trainID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]trainClassResponse, 0, len(classes))
    for _, cl := range classes {
        out = append(out, trainClassResponse{
            Code: cl.Code, Name: cl.Name, FarePaise: cl.FarePaise, TotalSeats: cl.TotalSeats,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"train_id": trainID, "classes": out})
}
