package platform

import (
	"fmt"

	"github.com/aretw0/introspection"

	"github.com/aretw0/tally/pkg/adapters/fs"
	"github.com/aretw0/tally/pkg/adapters/sqlite"
	"github.com/aretw0/tally/pkg/backup"
)

type node struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []node
}

// Diagram renders the app topology as a Mermaid tree.
func (a *App) Diagram() string {
	config := introspection.DefaultDiagramConfig()
	config.SecondaryID = "tally"
	config.SecondaryLabel = "Tally Topology"
	return introspection.TreeDiagram(a.tree(), config)
}

// Status values must match the classes of introspection.DefaultStyles.
func (a *App) tree() node {
	root := node{
		Name:     "Tally",
		Status:   "running",
		Metadata: map[string]string{"type": "container", "path": a.Dir},
	}

	if st, ok := a.Store.(*sqlite.Store); ok {
		s := st.State().(sqlite.StoreState)
		status := "running"
		if s.Closed {
			status = "stopped"
		}
		watchers := "suspended"
		if s.Watchers > 0 {
			watchers = "running"
		}
		root.Children = append(root.Children, node{
			Name:   "Notes",
			Status: status,
			Metadata: map[string]string{
				"type":   "process",
				"path":   s.Path,
				"writes": fmt.Sprintf("%d", s.Writes),
			},
			Children: []node{{
				Name:     "Watchers",
				Status:   watchers,
				Metadata: map[string]string{"type": "goroutine", "count": fmt.Sprintf("%d", s.Watchers)},
			}},
		})
	}

	as := a.Assets.State().(fs.AssetStoreState)
	watcher := "suspended"
	if as.WatcherActive {
		watcher = "running"
	}
	root.Children = append(root.Children, node{
		Name:     "Assets",
		Status:   "running",
		Metadata: map[string]string{"type": "process", "dir": as.Dir},
		Children: []node{{
			Name:     "Watcher",
			Status:   watcher,
			Metadata: map[string]string{"type": "goroutine"},
		}},
	})

	bs := a.Backup.State().(backup.ManagerState)
	status := "suspended"
	if bs.InProgress {
		status = "running"
	}
	root.Children = append(root.Children, node{
		Name:     "Backup",
		Status:   status,
		Metadata: map[string]string{"type": "process", "format": bs.Format},
	})
	return root
}
