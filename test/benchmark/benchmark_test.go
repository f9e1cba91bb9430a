package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/blog-cms/internal/mocks"
	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/service"
	"github.com/blog-cms/internal/validation"
	"github.com/rs/zerolog"
)

var titles = []string{
	"Hello World",
	"Café au Lait: a Morning Ritual",
	"  Go 1.24 -- What's New?  ",
	"Ünïcödé Ëvérywhérè",
	"日本語のタイトル",
}

// BenchmarkNormalizeSlug measures slug folding across mixed inputs
func BenchmarkNormalizeSlug(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		service.NormalizeSlug(titles[i%len(titles)])
	}
}

// BenchmarkCreateWithCollisions measures suffix probing when many
// articles already share the same base slug
func BenchmarkCreateWithCollisions(b *testing.B) {
	for _, existing := range []int{0, 10, 100} {
		b.Run(fmt.Sprintf("existing=%d", existing), func(b *testing.B) {
			repos, articles, _, _ := mocks.NewRepositories()
			svc := service.NewServices(repos, zerolog.Nop()).Article
			form := &models.ArticleForm{Title: "Same Title", Content: "x"}

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				b.StopTimer()
				articles.Articles = make(map[int64]*models.Article)
				for n := 0; n < existing; n++ {
					slug := "same-title"
					if n > 0 {
						slug = fmt.Sprintf("same-title-%d", n)
					}
					articles.Seed(models.Article{Title: "Same Title", Slug: slug, Content: "x"})
				}
				b.StartTimer()

				if _, err := svc.Create(context.Background(), form); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkValidateArticleForm measures form validation
func BenchmarkValidateArticleForm(b *testing.B) {
	form := &models.ArticleForm{Title: "Title", Summary: "Summary", Content: "Content"}
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		validation.ValidateArticleForm(form)
	}
}
