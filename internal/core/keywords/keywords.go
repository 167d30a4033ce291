// Package keywords 載入排序用的靜態關鍵字清單
package keywords

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var defaultKeywords []byte

// Set 不可變的關鍵字集合，以子字串比對
type Set struct {
	terms []string
}

// NewSet 建立集合，關鍵字一律轉小寫並去除空白與重複
func NewSet(terms ...string) Set {
	seen := make(map[string]struct{}, len(terms))
	normalized := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		normalized = append(normalized, term)
	}
	return Set{terms: normalized}
}

// Count 回傳出現在 text 中的關鍵字數量
func (s Set) Count(text string) int {
	text = strings.ToLower(text)
	n := 0
	for _, term := range s.terms {
		if strings.Contains(text, term) {
			n++
		}
	}
	return n
}

// CountAny 回傳出現在任一段文字中的關鍵字數量（每個關鍵字最多計一次）
func (s Set) CountAny(texts ...string) int {
	lowered := make([]string, len(texts))
	for i, text := range texts {
		lowered[i] = strings.ToLower(text)
	}
	n := 0
	for _, term := range s.terms {
		for _, text := range lowered {
			if strings.Contains(text, term) {
				n++
				break
			}
		}
	}
	return n
}

// Any 判斷 text 是否包含任一關鍵字
func (s Set) Any(text string) bool {
	text = strings.ToLower(text)
	for _, term := range s.terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// Len 關鍵字數量
func (s Set) Len() int {
	return len(s.terms)
}

// Allowlists 排序、分層與飲食篩選用到的所有清單
type Allowlists struct {
	Cuisine       Set
	Authentic     Set
	Regional      Set
	Popular       Set
	Vegetarian    Set
	NonVegetarian Set
}

type fileFormat struct {
	Cuisine       []string `yaml:"cuisine"`
	Authentic     []string `yaml:"authentic"`
	Regional      []string `yaml:"regional"`
	Popular       []string `yaml:"popular"`
	Vegetarian    []string `yaml:"vegetarian"`
	NonVegetarian []string `yaml:"non_vegetarian"`
}

// Default 回傳內建清單
func Default() *Allowlists {
	lists, err := Parse(defaultKeywords)
	if err != nil {
		panic(fmt.Sprintf("keywords: embedded allowlists are invalid: %v", err))
	}
	return lists
}

// Load 從檔案載入清單；path 為空時使用內建清單
func Load(path string) (*Allowlists, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords file: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 清單
func Parse(data []byte) (*Allowlists, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse keywords: %w", err)
	}
	if len(f.Cuisine) == 0 {
		return nil, fmt.Errorf("cuisine keyword list must not be empty")
	}
	return &Allowlists{
		Cuisine:       NewSet(f.Cuisine...),
		Authentic:     NewSet(f.Authentic...),
		Regional:      NewSet(f.Regional...),
		Popular:       NewSet(f.Popular...),
		Vegetarian:    NewSet(f.Vegetarian...),
		NonVegetarian: NewSet(f.NonVegetarian...),
	}, nil
}
