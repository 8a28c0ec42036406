package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableRef(t *testing.T) {
	tests := []struct {
		name          string
		value         string
		defaultSchema string
		want          TableRef
		wantErr       bool
	}{
		{
			name:          "bare table gets default schema",
			value:         "users",
			defaultSchema: "public",
			want:          TableRef{Schema: "public", Table: "users"},
		},
		{
			name:          "qualified table keeps its schema",
			value:         "sales.orders",
			defaultSchema: "public",
			want:          TableRef{Schema: "sales", Table: "orders"},
		},
		{
			name:  "bare table without default schema",
			value: "events",
			want:  TableRef{Table: "events"},
		},
		{
			name:          "dollar sign allowed mid-identifier",
			value:         "legacy$archive",
			defaultSchema: "public",
			want:          TableRef{Schema: "public", Table: "legacy$archive"},
		},
		{
			name:    "empty",
			value:   "  ",
			wantErr: true,
		},
		{
			name:    "three-part name",
			value:   "db.schema.table",
			wantErr: true,
		},
		{
			name:    "quoted injection attempt",
			value:   `users"; DROP TABLE users; --`,
			wantErr: true,
		},
		{
			name:    "leading digit",
			value:   "1users",
			wantErr: true,
		},
		{
			name:    "whitespace inside",
			value:   "use rs",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTableRef(tt.value, tt.defaultSchema)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQualified(t *testing.T) {
	assert.Equal(t, `"public"."users"`, TableRef{Schema: "public", Table: "users"}.Qualified())
	assert.Equal(t, `"events"`, TableRef{Table: "events"}.Qualified())
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"name"`, QuoteIdent("name"))
	assert.Equal(t, `"a""b"`, QuoteIdent(`a"b`))
	assert.Equal(t, "`name`", QuoteIdentMySQL("name"))
	assert.Equal(t, "`a``b`", QuoteIdentMySQL("a`b"))
}
