package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NpcSpawn places Count copies of a prefab on a map, spread one tile apart
// along X starting at (X, Y).
type NpcSpawn struct {
	Prefab      string  `yaml:"prefab"`
	Map         string  `yaml:"map"`
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	Count       int     `yaml:"count"`
	Personality string  `yaml:"personality"`
}

// NpcSpawnTable groups spawn rows by map name.
type NpcSpawnTable struct {
	byMap map[string][]NpcSpawn
	total int
}

// LoadNpcSpawns loads npc_spawns.yaml. A missing count means one NPC.
func LoadNpcSpawns(path string) (*NpcSpawnTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read npc spawns: %w", err)
	}
	return ParseNpcSpawns(raw)
}

// ParseNpcSpawns builds a table from YAML already in memory.
func ParseNpcSpawns(raw []byte) (*NpcSpawnTable, error) {
	var rows []NpcSpawn
	if err := yaml.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("parse npc spawns: %w", err)
	}
	t := &NpcSpawnTable{byMap: make(map[string][]NpcSpawn)}
	for i, r := range rows {
		if r.Prefab == "" || r.Map == "" {
			return nil, fmt.Errorf("npc spawn %d: prefab and map are required", i)
		}
		if r.Count <= 0 {
			r.Count = 1
		}
		t.byMap[r.Map] = append(t.byMap[r.Map], r)
		t.total += r.Count
	}
	return t, nil
}

// ForMap returns the spawn rows of one map in file order.
func (t *NpcSpawnTable) ForMap(name string) []NpcSpawn {
	if t == nil {
		return nil
	}
	return t.byMap[name]
}

// Count returns the total number of NPCs across all rows.
func (t *NpcSpawnTable) Count() int {
	if t == nil {
		return 0
	}
	return t.total
}
