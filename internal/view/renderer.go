// Package view отвечает за отрисовку HTML-страниц. Обработчики не знают
// о шаблонизаторе: они передают имя шаблона и набор именованных значений
// через интерфейс Renderer.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
)

// Renderer описывает отрисовку именованного шаблона с набором значений.
type Renderer interface {
	Render(w http.ResponseWriter, name string, data map[string]any) error
}

// TemplateRenderer реализует Renderer поверх html/template.
type TemplateRenderer struct {
	tmpl *template.Template
}

// funcMap вспомогательные функции шаблонов: арифметика пагинации,
// список номеров страниц и форматирование необязательного идентификатора.
var funcMap = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
	"pages": func(n int) []int {
		out := make([]int, 0, n)
		for i := 1; i <= n; i++ {
			out = append(out, i)
		}
		return out
	},
	"pid": func(p *int64) string {
		if p == nil {
			return ""
		}
		return strconv.FormatInt(*p, 10)
	},
}

// NewTemplateRenderer парсит все шаблоны из каталога dir.
func NewTemplateRenderer(dir string) (*TemplateRenderer, error) {
	const op = "view.NewTemplateRenderer"
	tmpl, err := template.New("").Funcs(funcMap).ParseGlob(filepath.Join(dir, "*.tmpl"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

// Render отрисовывает шаблон name во временный буфер и пишет результат в ответ.
// Буферизация не дает отдать клиенту наполовину отрисованную страницу при ошибке.
func (t *TemplateRenderer) Render(w http.ResponseWriter, name string, data map[string]any) error {
	const op = "view.Render"
	var buf bytes.Buffer
	if err := t.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}
