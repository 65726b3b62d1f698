// Package web holds the HTML templates and static assets, embedded so the
// binary and the tests render the same pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"path"
	"time"

	"github.com/gin-contrib/multitemplate"

	"inkpost/internal/models"
	"inkpost/internal/storage"
	"inkpost/internal/utils"
)

//go:embed templates static
var files embed.FS

// Static returns the files served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Pages maps handler template names to view files. Every page is rendered
// through layouts/base.html.
var Pages = []string{
	"post/list.html",
	"post/detail.html",
	"post/form.html",
	"post/delete.html",
	"post/my_posts.html",
	"comment/edit.html",
	"comment/delete.html",
	"auth/login.html",
	"auth/register.html",
	"auth/welcome.html",
	"user/profile.html",
	"error.html",
}

// Fragments are rendered without the layout.
var Fragments = []string{
	"comment/replies.html",
}

// LoadTemplates parses every page and fragment into a multitemplate renderer.
func LoadTemplates() multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := fs.Glob(files, "templates/layouts/*.html")
	if err != nil {
		panic(err)
	}
	includes, err := fs.Glob(files, "templates/includes/*.html")
	if err != nil {
		panic(err)
	}

	funcMap := FuncMap()
	parse := func(set []string) *template.Template {
		return template.Must(template.New(path.Base(set[0])).Funcs(funcMap).ParseFS(files, set...))
	}

	for _, name := range Pages {
		set := make([]string, 0, len(layouts)+len(includes)+1)
		set = append(set, layouts...)
		set = append(set, includes...)
		set = append(set, "templates/views/"+name)
		r.Add(name, parse(set))
	}
	for _, name := range Fragments {
		set := append([]string{"templates/views/" + name}, includes...)
		r.Add(name, parse(set))
	}
	return r
}

// FuncMap is shared by every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo":       timeAgo,
		"date":          func(t time.Time) string { return t.Format("January 2, 2006") },
		"urlquery":      url.QueryEscape,
		"media":         MediaURL,
		"excerpt":       utils.Excerpt,
		"renderComment": utils.RenderComment,
		"renderPost": func(p *models.Post) template.HTML {
			key := utils.RenderKey("post", p.ID, p.UpdatedAt)
			return utils.GetRenderCache().GetOrRender(key, func() template.HTML {
				return utils.RenderContent(p.Content)
			})
		},
	}
}

// MediaURL turns a stored image key into a browser URL.
func MediaURL(key string) string {
	if key == "" {
		return ""
	}
	if storage.Default == nil {
		return "/media/" + key
	}
	return storage.Default.URL(key)
}

func timeAgo(t time.Time) string {
	seconds := int(time.Since(t).Seconds())
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", unit)
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 2592000:
		return plural(seconds/86400, "day")
	case seconds < 31536000:
		return plural(seconds/2592000, "month")
	}
	return plural(seconds/31536000, "year")
}
