// mapconv converts L1J mapids.sql and dungeon.sql into the map list and
// portal list read by the world loader. Each map id is placed on a layer
// of its own; portals between two converted maps are kept.
//
// Usage:
//
//	mapconv <sql-dir> <out-dir> <map-id>=<floor> [<map-id>=<floor> ...]
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/l1jgo/worldcore/internal/data"
	"github.com/l1jgo/worldcore/internal/geo"
	"golang.org/x/text/encoding/traditionalchinese"
	"gopkg.in/yaml.v3"
)

// defaultGroundID is the ground placed on every converted tile.
const defaultGroundID = 100

type mapList struct {
	Name string          `yaml:"name"`
	Maps []data.AreaInfo `yaml:"maps"`
}

func main() {
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "Usage: mapconv <sql-dir> <out-dir> <map-id>=<floor> [...]")
		os.Exit(1)
	}
	floors, err := parseFloors(os.Args[3:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := convert(os.Args[1], os.Args[2], floors); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func convert(sqlDir, outDir string, floors map[int]uint8) error {
	mapRows, err := parseAllInserts(filepath.Join(sqlDir, "mapids.sql"))
	if err != nil {
		return err
	}
	areas := convertAreas(mapRows, floors)
	fmt.Printf("  mapids: %d areas\n", len(areas))
	if err := writeYAML(filepath.Join(outDir, "map_list.yaml"),
		mapList{Name: "converted", Maps: areas},
		"# Map list - converted from L1J mapids.sql"); err != nil {
		return err
	}

	dungeonRows, err := parseAllInserts(filepath.Join(sqlDir, "dungeon.sql"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	portals := convertPortals(dungeonRows, floors)
	fmt.Printf("  dungeon: %d portals\n", len(portals))
	return writeYAML(filepath.Join(outDir, "portal_list.yaml"), portals,
		"# Portal list - converted from L1J dungeon.sql")
}

// parseFloors reads "mapid=floor" arguments.
func parseFloors(args []string) (map[int]uint8, error) {
	floors := make(map[int]uint8, len(args))
	for _, a := range args {
		id, fl, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("bad mapping %q, want <map-id>=<floor>", a)
		}
		mapID, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("bad map id %q: %w", id, err)
		}
		floor, err := strconv.Atoi(fl)
		if err != nil || floor < 0 || floor >= geo.MaxLayers {
			return nil, fmt.Errorf("bad floor %q for map %d", fl, mapID)
		}
		floors[mapID] = uint8(floor)
	}
	return floors, nil
}

// convertAreas keeps the mapids rows whose map id has a floor. Rows:
// mapid, locationname, startX, endX, startY, endY, ...
func convertAreas(rows [][]string, floors map[int]uint8) []data.AreaInfo {
	var areas []data.AreaInfo
	for _, r := range rows {
		if len(r) < 6 {
			continue
		}
		mapID := parseInt(r[0])
		floor, ok := floors[mapID]
		if !ok {
			continue
		}
		sx, ex, sy, ey := parseInt(r[2]), parseInt(r[3]), parseInt(r[4]), parseInt(r[5])
		if !validCoord(sx) || !validCoord(ex) || !validCoord(sy) || !validCoord(ey) || ex < sx || ey < sy {
			fmt.Fprintf(os.Stderr, "  skip map %d: bad bounds\n", mapID)
			continue
		}
		areas = append(areas, data.AreaInfo{
			Name:     strconv.Itoa(mapID),
			Floor:    floor,
			StartX:   uint16(sx),
			EndX:     uint16(ex),
			StartY:   uint16(sy),
			EndY:     uint16(ey),
			GroundID: defaultGroundID,
		})
	}
	sort.Slice(areas, func(i, j int) bool {
		if areas[i].Floor != areas[j].Floor {
			return areas[i].Floor < areas[j].Floor
		}
		return areas[i].Name < areas[j].Name
	})
	return areas
}

// convertPortals keeps dungeon rows linking two converted maps. Rows:
// src_x, src_y, src_mapid, new_x, new_y, new_mapid, new_heading, note.
func convertPortals(rows [][]string, floors map[int]uint8) []data.PortalEntry {
	var portals []data.PortalEntry
	for _, r := range rows {
		if len(r) < 6 {
			continue
		}
		srcFloor, ok := floors[parseInt(r[2])]
		if !ok {
			continue
		}
		dstFloor, ok := floors[parseInt(r[5])]
		if !ok {
			continue
		}
		sx, sy, dx, dy := parseInt(r[0]), parseInt(r[1]), parseInt(r[3]), parseInt(r[4])
		if !validCoord(sx) || !validCoord(sy) || !validCoord(dx) || !validCoord(dy) {
			continue
		}
		var note string
		if len(r) > 7 {
			note = decodeBig5(r[7])
		}
		portals = append(portals, data.PortalEntry{
			Src:  data.Point{X: uint16(sx), Y: uint16(sy), Z: srcFloor},
			Dst:  data.Point{X: uint16(dx), Y: uint16(dy), Z: dstFloor},
			Note: note,
		})
	}
	sort.Slice(portals, func(i, j int) bool {
		a, b := portals[i].Src, portals[j].Src
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	return portals
}

func validCoord(v int) bool { return v >= 0 && v <= 0xFFFF }

// decodeBig5 turns Big5 text (old L1J dumps) into UTF-8. Text that is
// already valid UTF-8 is kept.
func decodeBig5(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	decoded, err := traditionalchinese.Big5.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return decoded
}

// ---------------------------------------------------------------------------
// SQL parsing helpers
// ---------------------------------------------------------------------------

// parseValues extracts column values from a single INSERT INTO ... VALUES (...) line.
func parseValues(line string) []string {
	upper := strings.ToUpper(line)
	idx := strings.Index(upper, "VALUES")
	if idx == -1 {
		return nil
	}
	rest := line[idx+6:]
	start := strings.IndexByte(rest, '(')
	if start == -1 {
		return nil
	}
	end := strings.LastIndexByte(rest, ')')
	if end == -1 || end <= start {
		return nil
	}
	inner := rest[start+1 : end]

	var values []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		if inQuote {
			if ch == '\'' {
				if i+1 < len(inner) && inner[i+1] == '\'' {
					cur.WriteByte('\'')
					i++
				} else {
					inQuote = false
				}
			} else {
				cur.WriteByte(ch)
			}
			continue
		}
		switch ch {
		case '\'':
			inQuote = true
		case ',':
			values = append(values, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	values = append(values, strings.TrimSpace(cur.String()))

	for i, v := range values {
		if strings.EqualFold(v, "null") {
			values[i] = ""
		}
	}
	return values
}

// parseAllInserts reads a SQL file and returns all parsed INSERT rows.
func parseAllInserts(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToUpper(line), "INSERT INTO") {
			continue
		}
		if vals := parseValues(line); vals != nil {
			rows = append(rows, vals)
		}
	}
	return rows, nil
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	v, _ := strconv.Atoi(s)
	return v
}

func writeYAML(path string, v any, comment string) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if comment != "" {
		fmt.Fprintln(f, comment)
		fmt.Fprintln(f)
	}
	_, err = f.Write(out)
	return err
}
