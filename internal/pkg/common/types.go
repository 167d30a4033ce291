package common

import (
	"fmt"
	"strings"
)

// MaxIngredientSlots 上游記錄最多提供的食材欄位數
const MaxIngredientSlots = 20

// PlaceholderThumbnail 記錄沒有縮圖時使用的預設圖片
const PlaceholderThumbnail = "https://www.themealdb.com/images/media/meals/placeholder.jpg"

// IngredientLine 一行食材（份量可省略）
type IngredientLine struct {
	Measure    string `json:"measure,omitempty"`
	Ingredient string `json:"ingredient"`
}

// String 以「份量 食材」格式輸出
func (l IngredientLine) String() string {
	if l.Measure == "" {
		return l.Ingredient
	}
	return l.Measure + " " + l.Ingredient
}

// RecipeRecord 上游閘道回傳的一道菜
type RecipeRecord struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	ThumbnailURL string           `json:"thumbnail_url,omitempty"`
	Category     string           `json:"category,omitempty"`
	Area         string           `json:"area,omitempty"`
	Instructions string           `json:"instructions,omitempty"`
	Ingredients  []IngredientLine `json:"ingredients,omitempty"`
	VideoURL     string           `json:"video_url,omitempty"`
	SourceURL    string           `json:"source_url,omitempty"`
}

// Thumbnail 回傳縮圖，缺少時回傳預設圖片
func (r RecipeRecord) Thumbnail() string {
	if r.ThumbnailURL == "" {
		return PlaceholderThumbnail
	}
	return r.ThumbnailURL
}

// InstructionParagraphs 將作法依換行切成段落，去掉空行
func (r RecipeRecord) InstructionParagraphs() []string {
	if strings.TrimSpace(r.Instructions) == "" {
		return nil
	}
	normalized := strings.ReplaceAll(r.Instructions, "\r\n", "\n")
	var paragraphs []string
	for _, line := range strings.Split(normalized, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return paragraphs
}

// RawMeal 上游的扁平記錄，所有欄位皆為字串或 null
type RawMeal map[string]*string

func (m RawMeal) field(key string) string {
	if v, ok := m[key]; ok && v != nil {
		return strings.TrimSpace(*v)
	}
	return ""
}

// ToRecord 轉換為 RecipeRecord
// 食材欄位依序掃描 1..20，遇到第一個空的食材欄位即停止
func (m RawMeal) ToRecord() RecipeRecord {
	rec := RecipeRecord{
		ID:           m.field("idMeal"),
		Name:         m.field("strMeal"),
		ThumbnailURL: m.field("strMealThumb"),
		Category:     m.field("strCategory"),
		Area:         m.field("strArea"),
		Instructions: m.field("strInstructions"),
		VideoURL:     m.field("strYoutube"),
		SourceURL:    m.field("strSource"),
	}

	for i := 1; i <= MaxIngredientSlots; i++ {
		ingredient := m.field(fmt.Sprintf("strIngredient%d", i))
		if ingredient == "" {
			break
		}
		rec.Ingredients = append(rec.Ingredients, IngredientLine{
			Measure:    m.field(fmt.Sprintf("strMeasure%d", i)),
			Ingredient: ingredient,
		})
	}

	return rec
}
