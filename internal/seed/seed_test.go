package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
)

func TestParseRoster(t *testing.T) {
	input := "\ufeff姓名,工号,部门\n王小明,E10001,Maintenance\n Sarah Connor ,E10004,\n,E10005,Electrical\n"

	technicians, err := ParseRoster(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, technicians, 2)

	assert.Equal(t, "Wang Xiaoming", technicians[0].Name)
	assert.Equal(t, "E10001", technicians[0].EmployeeID)
	assert.Equal(t, "Maintenance", technicians[0].Department)
	assert.Equal(t, domain.TechnicianActive, technicians[0].Status)

	assert.Equal(t, "Sarah Connor", technicians[1].Name)
	assert.Equal(t, "", technicians[1].Department)
}

func TestParseRosterMissingColumn(t *testing.T) {
	_, err := ParseRoster(strings.NewReader("姓名,部门\n王小明,Maintenance\n"))
	assert.Error(t, err)
}
