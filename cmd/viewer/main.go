// Command viewer opens a window showing a scene script, or a single sphere,
// and lets the detail level of each sphere be changed with + and -.
package main

import (
	"flag"
	"log"

	"github.com/smasonuk/geosphere"
	"github.com/smasonuk/geosphere/scene"
	"github.com/smasonuk/geosphere/viewer"
)

func main() {
	script := flag.String("script", "", "Scene script to show.")
	detail := flag.Int("detail", scene.DefaultDetail, "Detail level of the single sphere shown without -script.")
	workers := flag.Int("workers", 4, "Goroutines subdividing faces.")
	flag.Parse()

	var bodies []scene.Body
	if *script != "" {
		log.Printf("Loading scene %s...", *script)
		var err error
		bodies, err = scene.LoadFile(*script)
		if err != nil {
			log.Fatalf("Error loading scene: %v", err)
		}
	} else {
		bodies = []scene.Body{{
			Name:      "sphere",
			Detail:    *detail,
			Radius:    scene.DefaultRadius,
			Attribute: geosphere.RGBA(0.2, 0.5, 0.9, 1),
		}}
	}

	log.Println("Building meshes...")
	g, err := viewer.NewGame(bodies, geosphere.WithWorkers(*workers))
	if err != nil {
		log.Fatalf("Error building scene: %v", err)
	}

	log.Println("Initialization Complete.")
	if err := viewer.Run(g, "geosphere"); err != nil {
		log.Fatal(err)
	}
}
