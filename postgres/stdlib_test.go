package postgres_test

import (
	"testing"

	"github.com/sbowman/lazytx"
	"github.com/sbowman/lazytx/postgres"
	"github.com/stretchr/testify/assert"
)

// The database/sql flavor shares the pool and behaves the same.
func TestStandard(t *testing.T) {
	assert := assert.New(t)
	db := connect(t)

	std := postgres.StdFromPool(db.Pool)
	names := table(t, std)

	chain := lazytx.Bind(insertName(names, "jdoe"), func(id int64) lazytx.Effect[lazytx.Option[string]] {
		return selectName(names, id)
	})

	name, err := lazytx.Execute(t.Context(), std, chain)
	assert.Nil(err)
	assert.Equal(lazytx.Some("jdoe"), name)

	_, err = lazytx.Execute(t.Context(), std, insertName(names, "jdoe"))
	assert.True(postgres.UniqueViolation(err))
}
