package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/l1jgo/worldcore/internal/data"
	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/traditionalchinese"
)

func TestParseValues(t *testing.T) {
	vals := parseValues(`INSERT INTO dungeon VALUES ('32477', '32851', '0', NULL, 'it''s a hole');`)
	assert.Equal(t, []string{"32477", "32851", "0", "", "it's a hole"}, vals)
	assert.Nil(t, parseValues("CREATE TABLE dungeon ("))
}

func TestParseFloors(t *testing.T) {
	floors, err := parseFloors([]string{"4=7", "1=8"})
	require.NoError(t, err)
	assert.Equal(t, map[int]uint8{4: 7, 1: 8}, floors)

	for _, bad := range []string{"4", "x=7", "4=16", "4=-1"} {
		_, err := parseFloors([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestDecodeBig5(t *testing.T) {
	raw, err := traditionalchinese.Big5.NewEncoder().String("說話之島")
	require.NoError(t, err)
	assert.Equal(t, "說話之島", decodeBig5(raw))
	assert.Equal(t, "plain", decodeBig5("plain"))
}

func TestConvert(t *testing.T) {
	sqlDir, outDir := t.TempDir(), t.TempDir()
	note, err := traditionalchinese.Big5.NewEncoder().String("樓梯")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(sqlDir, "mapids.sql"), []byte(
		"INSERT INTO `mapids` VALUES ('4', 'mainland', '10', '14', '20', '22', '1', '1');\n"+
			"INSERT INTO `mapids` VALUES ('1', 'cave', '0', '3', '0', '3', '1', '1');\n"+
			"INSERT INTO `mapids` VALUES ('9', 'ignored', '0', '3', '0', '3', '1', '1');\n"+
			"INSERT INTO `mapids` VALUES ('2', 'broken', '9', '3', '0', '3', '1', '1');\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sqlDir, "dungeon.sql"), []byte(
		"INSERT INTO `dungeon` VALUES ('12', '21', '4', '1', '1', '1', '4', '"+note+"');\n"+
			"INSERT INTO `dungeon` VALUES ('11', '21', '4', '1', '1', '9', '4', 'elsewhere');\n"), 0o644))

	require.NoError(t, convert(sqlDir, outDir, map[int]uint8{4: 7, 1: 8, 2: 9}))

	// A one-row tile file is enough for the loader to accept the area.
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "4.txt"), []byte("1,1,1,1,1\n"), 0o644))
	table, err := data.LoadMapData(filepath.Join(outDir, "map_list.yaml"), outDir, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, table.Count())
	assert.Equal(t, data.AreaInfo{Name: "4", Floor: 7, StartX: 10, EndX: 14, StartY: 20, EndY: 22, GroundID: defaultGroundID}, table.Areas()[0])

	portals, err := data.LoadPortalTable(filepath.Join(outDir, "portal_list.yaml"))
	require.NoError(t, err)
	require.Equal(t, 1, portals.Count())
	p := portals.Get(geo.Pos(12, 21, 7))
	require.NotNil(t, p)
	assert.Equal(t, geo.Pos(1, 1, 8), p.Dst.Pos())
	assert.Equal(t, "樓梯", p.Note)
}
