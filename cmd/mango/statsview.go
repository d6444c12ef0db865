package main

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/folium-app/mango/internal/log"
)

const statsAddr = "localhost:18066"

// launchStatsview serves runtime charts in the background.
func launchStatsview() {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(statsAddr))
		mgr := statsview.New()
		mgr.Start()
	}()

	log.ModEmu.Infof("stats server available at http://%s/debug/statsview", statsAddr)
}
