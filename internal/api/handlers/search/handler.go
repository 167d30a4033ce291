package search

import (
	"net/http"
	"strings"

	"recipe-search/internal/core/recipe"
	"recipe-search/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SearchRequest 搜尋請求
type SearchRequest struct {
	Query string `json:"query" form:"q"`
	Diet  string `json:"diet,omitempty" form:"diet"`
}

// BrowseRequest 瀏覽請求
type BrowseRequest struct {
	Area     string `form:"area"`
	Category string `form:"category"`
	Diet     string `form:"diet"`
}

// DetailsResponse 食譜詳細內容
type DetailsResponse struct {
	recipe.RecipeRecord
	Thumbnail        string   `json:"thumbnail"`
	InstructionSteps []string `json:"instruction_steps"`
	IngredientLines  []string `json:"ingredient_lines"`
}

// ListResponse 食譜清單
type ListResponse struct {
	Recipes []recipe.RecipeRecord `json:"recipes"`
	Count   int                   `json:"count"`
}

// Handler 食譜搜尋處理程序
type Handler struct {
	service *recipe.Service
}

// NewHandler 創建新的處理程序
func NewHandler(service *recipe.Service) *Handler {
	return &Handler{service: service}
}

// Register 註冊路由
func (h *Handler) Register(group *gin.RouterGroup) {
	recipes := group.Group("/recipes")
	recipes.POST("/search", h.HandleSearch)
	recipes.GET("/search", h.HandleSearch)
	recipes.GET("/suggestions", h.HandleSuggestions)
	recipes.GET("/random", h.HandleRandom)
	recipes.GET("/browse", h.HandleBrowse)
	recipes.GET("/:id", h.HandleDetails)
}

// HandleSearch 搜尋食譜
func (h *Handler) HandleSearch(c *gin.Context) {
	var req SearchRequest
	var err error
	if c.Request.Method == http.MethodPost {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil {
		common.LogWarn("請求格式無效", zap.Error(err), zap.String("request_id", requestid.Get(c)))
		respondError(c, common.Wrap(common.ErrInvalidRequest, err))
		return
	}

	diet, err := recipe.ParseDiet(req.Diet)
	if err != nil {
		respondError(c, common.Wrap(common.ErrInvalidRequest, err))
		return
	}

	common.LogInfo("開始處理搜尋請求",
		zap.String("request_id", requestid.Get(c)),
		zap.String("query", req.Query),
		zap.String("diet", string(diet)),
	)

	outcome, err := h.service.Search(c.Request.Context(), req.Query, diet)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if outcome.Status == recipe.SearchStatusError {
		status = common.ErrSearchFailed.Status
	}
	c.JSON(status, outcome)
}

// HandleSuggestions 建議清單
func (h *Handler) HandleSuggestions(c *gin.Context) {
	suggestions := h.service.Suggestions(c.Request.Context())
	c.JSON(http.StatusOK, ListResponse{Recipes: suggestions, Count: len(suggestions)})
}

// HandleRandom 隨機推薦
func (h *Handler) HandleRandom(c *gin.Context) {
	rec, err := h.service.Random(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDetailsResponse(rec))
}

// HandleDetails 食譜詳細內容
func (h *Handler) HandleDetails(c *gin.Context) {
	rec, err := h.service.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDetailsResponse(rec))
}

// HandleBrowse 依地區及分類瀏覽
func (h *Handler) HandleBrowse(c *gin.Context) {
	var req BrowseRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, common.Wrap(common.ErrInvalidRequest, err))
		return
	}
	diet, err := recipe.ParseDiet(req.Diet)
	if err != nil {
		respondError(c, common.Wrap(common.ErrInvalidRequest, err))
		return
	}

	records, err := h.service.Browse(c.Request.Context(), recipe.BrowseFilter{
		Area:     strings.TrimSpace(req.Area),
		Category: strings.TrimSpace(req.Category),
		Diet:     diet,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Recipes: records, Count: len(records)})
}

func newDetailsResponse(rec *recipe.RecipeRecord) DetailsResponse {
	steps := rec.InstructionParagraphs()
	if steps == nil {
		steps = []string{}
	}
	lines := make([]string, 0, len(rec.Ingredients))
	for _, ing := range rec.Ingredients {
		lines = append(lines, ing.String())
	}
	return DetailsResponse{
		RecipeRecord:     *rec,
		Thumbnail:        rec.Thumbnail(),
		InstructionSteps: steps,
		IngredientLines:  lines,
	}
}

// respondError 將錯誤轉成統一格式的 JSON 回應
func respondError(c *gin.Context, err error) {
	ce := common.AsCustomError(err)
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗",
			zap.String("request_id", requestid.Get(c)),
			zap.String("code", ce.Code),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.Abort()
	common.WriteErrorResponse(c.Writer, ce)
}
