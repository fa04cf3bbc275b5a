package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpawnEntry defines where and how many creatures to spawn.
type SpawnEntry struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"` // monster or npc
	X      uint16 `yaml:"x"`
	Y      uint16 `yaml:"y"`
	Z      uint8  `yaml:"z"`
	Count  int    `yaml:"count"`
	Radius int    `yaml:"radius"` // wander radius around the spawn point, 0 = stand still
}

type spawnListFile struct {
	Spawns []SpawnEntry `yaml:"spawns"`
}

// LoadSpawnList loads spawn entries from a YAML file. Entries without a
// count spawn one creature.
func LoadSpawnList(path string) ([]SpawnEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn_list: %w", err)
	}
	var f spawnListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawn_list: %w", err)
	}
	for i := range f.Spawns {
		if f.Spawns[i].Count <= 0 {
			f.Spawns[i].Count = 1
		}
		if f.Spawns[i].Kind == "" {
			f.Spawns[i].Kind = "monster"
		}
	}
	return f.Spawns, nil
}
