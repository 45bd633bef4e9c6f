package boardapi

// RawItem is one board record as returned by the source, before any
// cleaning. Columns maps column title → display text. Titles are the stable
// contract between boards and the normalizer; column ids change per board
// and are only kept as fallback keys for untitled columns.
type RawItem struct {
	ID      string
	Name    string
	Columns map[string]string
}

// graphql wire types

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlResponse struct {
	Data struct {
		Boards []struct {
			ItemsPage struct {
				Cursor string    `json:"cursor"`
				Items  []gqlItem `json:"items"`
			} `json:"items_page"`
		} `json:"boards"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}

type gqlItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ColumnValues []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"column_values"`
}

type gqlError struct {
	Message string `json:"message"`
}

func (it gqlItem) toRawItem() RawItem {
	cols := make(map[string]string, len(it.ColumnValues))
	for _, cv := range it.ColumnValues {
		key := cv.Title
		if key == "" {
			key = cv.ID
		}
		cols[key] = cv.Text
	}
	return RawItem{ID: it.ID, Name: it.Name, Columns: cols}
}
