package main

import (
	"github.com/fwojciec/reelscout"
)

// builtinSources is the source registry shipped with the daemon. Config
// entries with the same ID override individual fields.
func builtinSources() []*reelscout.Source {
	return []*reelscout.Source{
		{
			ID:          "dramacool",
			Name:        "Dramacool",
			BaseURL:     "https://dramacool.com.tr",
			ContentType: reelscout.ContentTypeDrama,
			ListPaths:   []string{"/recently-added-drama", "/most-popular-drama?page={page}"},
			SearchPath:  "/search?type=movies&keyword={query}",
			DetailsPath: "/drama-detail/{id}",
			IsActive:    true,
			Selectors: reelscout.SelectorSet{
				reelscout.FieldItem:        {"ul.list-episode-item li", ".block-tab ul li"},
				reelscout.FieldTitle:       {"h3.title", ".title", "a@title"},
				reelscout.FieldURL:         {"a.img@href", "a"},
				reelscout.FieldImage:       {"img"},
				reelscout.FieldRating:      {".rating"},
				reelscout.FieldYear:        {".year", ".time"},
				reelscout.FieldGenres:      {".genres a", "p:contains('Genre') a"},
				reelscout.FieldDescription: {".info p:not(:has(span))", ".synopsis"},
				reelscout.FieldStatus:      {"p:contains('Status')"},
				reelscout.FieldEpisodes:    {".episodes", "p:contains('Episodes')"},
				reelscout.FieldCast:        {".cast a", ".actor a"},
			},
		},
		{
			ID:          "gogoanime",
			Name:        "Gogoanime",
			BaseURL:     "https://gogoanime3.co",
			ContentType: reelscout.ContentTypeAnime,
			ListPaths:   []string{"/?page={page}", "/popular.html"},
			SearchPath:  "/search.html?keyword={query}",
			DetailsPath: "/category/{id}",
			IsActive:    true,
			Selectors: reelscout.SelectorSet{
				reelscout.FieldItem:        {".last_episodes ul.items li", "ul.items li"},
				reelscout.FieldTitle:       {"p.name a", ".name"},
				reelscout.FieldURL:         {"p.name a", ".img a"},
				reelscout.FieldImage:       {".img img"},
				reelscout.FieldYear:        {"p.released"},
				reelscout.FieldGenres:      {"p.type:contains('Genre') a"},
				reelscout.FieldDescription: {".description", "p.type:contains('Plot Summary')"},
				reelscout.FieldStatus:      {"p.type:contains('Status') a"},
				reelscout.FieldEpisodes:    {"#episode_page li:last-child a@ep_end"},
			},
		},
		{
			ID:          "yts",
			Name:        "YTS",
			BaseURL:     "https://yts.mx",
			ContentType: reelscout.ContentTypeMovie,
			ListPaths:   []string{"/browse-movies?page={page}", "/"},
			SearchPath:  "/browse-movies/{query}/all/all/0/latest/0/all",
			DetailsPath: "/movies/{id}",
			IsActive:    true,
			Selectors: reelscout.SelectorSet{
				reelscout.FieldItem:        {".browse-movie-wrap"},
				reelscout.FieldTitle:       {".browse-movie-title", "a.browse-movie-link img@alt"},
				reelscout.FieldURL:         {"a.browse-movie-link"},
				reelscout.FieldImage:       {"img.img-responsive"},
				reelscout.FieldRating:      {"h4.rating"},
				reelscout.FieldYear:        {".browse-movie-year"},
				reelscout.FieldGenres:      {"figcaption h4:not(.rating)"},
				reelscout.FieldDescription: {"#synopsis p", ".synopsis"},
				reelscout.FieldBackdrop:    {"#movie-poster img"},
			},
		},
		{
			ID:          "bollyflix",
			Name:        "BollyFlix",
			BaseURL:     "https://bollyflix.meme",
			ContentType: reelscout.ContentTypeBollywood,
			ListPaths:   []string{"/page/{page}/", "/"},
			SearchPath:  "/search/{query}",
			DetailsPath: "/{id}/",
			IsActive:    true,
			Selectors: reelscout.SelectorSet{
				reelscout.FieldItem:        {"article.post", ".post-item"},
				reelscout.FieldTitle:       {"h2.entry-title a", ".post-title"},
				reelscout.FieldURL:         {"h2.entry-title a", "a"},
				reelscout.FieldImage:       {".post-thumbnail img", "img"},
				reelscout.FieldYear:        {".entry-title"},
				reelscout.FieldDescription: {".entry-content > p:first-of-type"},
			},
		},
	}
}

// mergeSources applies overrides to builtin in order. Unknown IDs are
// appended as new sources.
func mergeSources(builtin []*reelscout.Source, overrides []SourceConfig) []*reelscout.Source {
	out := make([]*reelscout.Source, 0, len(builtin)+len(overrides))
	index := make(map[string]*reelscout.Source, len(builtin))
	for _, src := range builtin {
		cp := *src
		out = append(out, &cp)
		index[cp.ID] = &cp
	}

	for _, o := range overrides {
		src, ok := index[o.ID]
		if !ok {
			src = &reelscout.Source{ID: o.ID, Name: o.ID, IsActive: true}
			out = append(out, src)
			index[o.ID] = src
		}
		if o.Name != "" {
			src.Name = o.Name
		}
		if o.BaseURL != "" {
			src.BaseURL = o.BaseURL
		}
		if o.ContentType != "" {
			src.ContentType = reelscout.ContentType(o.ContentType)
		}
		if o.Active != nil {
			src.IsActive = *o.Active
		}
		if len(o.ListPaths) > 0 {
			src.ListPaths = o.ListPaths
		}
		if o.SearchPath != "" {
			src.SearchPath = o.SearchPath
		}
		if o.DetailsPath != "" {
			src.DetailsPath = o.DetailsPath
		}
		if len(o.Selectors) > 0 {
			merged := make(reelscout.SelectorSet, len(src.Selectors)+len(o.Selectors))
			for f, sel := range src.Selectors {
				merged[f] = sel
			}
			for f, sel := range o.Selectors {
				merged[reelscout.Field(f)] = sel
			}
			src.Selectors = merged
		}
	}
	return out
}
