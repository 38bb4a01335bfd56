package main

import (
	"context"
	"embed"
	"log"
	"net/url"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
	wruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/MJE43/scorekeeper-desktop/internal/api"
	"github.com/MJE43/scorekeeper-desktop/internal/config"
	"github.com/MJE43/scorekeeper-desktop/internal/desktop"
)

//go:embed all:frontend/dist
var assets embed.FS

const repoURL = "https://github.com/MJE43/scorekeeper-desktop"

var (
	appCtx   context.Context
	appCtxMu sync.RWMutex
)

func buildWindowsOptions() *windows.Options {
	return &windows.Options{
		BackdropType: windows.Mica,
		Theme:        windows.SystemDefault,
		CustomTheme: &windows.ThemeSettings{
			DarkModeTitleBar:   windows.RGB(20, 33, 28),
			DarkModeTitleText:  windows.RGB(236, 243, 238),
			DarkModeBorder:     windows.RGB(46, 70, 58),
			LightModeTitleBar:  windows.RGB(246, 250, 247),
			LightModeTitleText: windows.RGB(17, 24, 20),
			LightModeBorder:    windows.RGB(222, 232, 225),
		},
		ZoomFactor:      1.0,
		WindowClassName: "ScoreKeeperWindow",
	}
}

const iconPath = "frontend/dist/assets/logo.png"

// appIcon returns the embedded logo, or nil so Wails falls back to its default.
func appIcon() []byte {
	icon, err := assets.ReadFile(iconPath)
	if err != nil {
		log.Printf("app icon: %v", err)
		return nil
	}
	return icon
}

func buildMacOptions() *mac.Options {
	return &mac.Options{
		TitleBar: &mac.TitleBar{HideToolbarSeparator: true},
		About: &mac.AboutInfo{
			Title: "ScoreKeeper",
			Message: "Scores for Uno, Phase 10, SkyJo, Hearts, Spades, Crazy 8s and your own games.\n\n" +
				"Built with Wails. Everything stays on this computer.",
			Icon: appIcon(),
		},
	}
}

func buildLinuxOptions() *linux.Options {
	return &linux.Options{
		Icon:             appIcon(),
		WebviewGpuPolicy: linux.WebviewGpuPolicyOnDemand,
		ProgramName:      "scorekeeper",
	}
}

func main() {
	log.Printf("Starting ScoreKeeper %s (Go %s)...", api.Version, runtime.Version())

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gameMod, err := desktop.NewGameModule(context.Background(), cfg)
	if err != nil {
		log.Fatalf("game module init failed: %v", err)
	}

	startup := func(ctx context.Context) {
		setAppContext(ctx)
		if err := gameMod.Startup(ctx); err != nil {
			log.Printf("loopback API failed to start: %v", err)
			return
		}
		if info := gameMod.GetDataInfo(); info.APIURL != "" {
			log.Printf("Loopback API ready at %s", info.APIURL)
		}
	}

	beforeClose := func(ctx context.Context) (prevent bool) {
		if err := gameMod.Shutdown(ctx); err != nil {
			log.Printf("game module shutdown error: %v", err)
		}
		setAppContext(nil)
		log.Println("Application is closing")
		return false
	}

	if err := wails.Run(&options.App{
		Title:            "ScoreKeeper",
		Width:            1100,
		Height:           760,
		MinWidth:         720,
		MinHeight:        560,
		BackgroundColour: &options.RGBA{R: 20, G: 33, B: 28, A: 255},

		AssetServer: &assetserver.Options{
			Assets: assets,
		},

		OnStartup:     startup,
		OnBeforeClose: beforeClose,
		OnShutdown: func(ctx context.Context) {
			log.Println("Application shutdown complete")
		},

		Menu: buildAppMenu(cfg),
		Bind: []interface{}{gameMod},

		LogLevel:           logger.INFO,
		LogLevelProduction: logger.ERROR,

		EnableDefaultContextMenu: false,

		// The window gets the same typed errors as API clients so it can
		// show confirmation prompts.
		ErrorFormatter: func(err error) any {
			if err == nil {
				return nil
			}
			return api.Describe(err)
		},

		SingleInstanceLock: &options.SingleInstanceLock{
			UniqueId: "6d1f0b7a-3c52-4e8e-9a47-scorekeeper-desktop",
			OnSecondInstanceLaunch: func(data options.SecondInstanceData) {
				log.Printf("Second instance launch prevented. Args: %v", data.Args)
			},
		},

		DragAndDrop: &options.DragAndDrop{
			EnableFileDrop:     false,
			DisableWebViewDrop: true,
		},

		Windows: buildWindowsOptions(),
		Mac:     buildMacOptions(),
		Linux:   buildLinuxOptions(),
	}); err != nil {
		log.Fatalf("Error running Wails app: %v", err)
	}

	log.Println("Application exited normally")
}

func buildAppMenu(cfg config.Config) *menu.Menu {
	rootMenu := menu.NewMenu()

	if runtime.GOOS == "darwin" {
		if appMenu := menu.AppMenu(); appMenu != nil {
			rootMenu.Append(appMenu)
		}
	}

	gameMenu := menu.NewMenu()
	gameMenu.AddText("Undo Last Round", keys.CmdOrCtrl("z"), func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			wruntime.EventsEmit(ctx, "menu:undo")
		})
	})
	gameMenu.AddText("New Game", keys.CmdOrCtrl("n"), func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			wruntime.EventsEmit(ctx, "menu:new-game")
		})
	})
	gameMenu.AddSeparator()
	gameMenu.AddText("Open Data Directory", keys.CmdOrCtrl("o"), func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			openPathInExplorer(ctx, cfg.DataDir)
		})
	})
	gameMenu.AddSeparator()
	gameMenu.AddText("Quit", keys.CmdOrCtrl("q"), func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			wruntime.Quit(ctx)
		})
	})
	rootMenu.Append(menu.SubMenu("Game", gameMenu))

	viewMenu := menu.NewMenu()
	viewMenu.AddText("Reload Frontend", keys.CmdOrCtrl("r"), func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			wruntime.WindowReloadApp(ctx)
		})
	})
	viewMenu.AddText("Toggle Fullscreen", keys.Combo("f", keys.CmdOrCtrlKey, keys.ShiftKey), func(_ *menu.CallbackData) {
		withAppContext(toggleFullscreen)
	})
	rootMenu.Append(menu.SubMenu("View", viewMenu))

	helpMenu := menu.NewMenu()
	helpMenu.AddText("Project Repository", nil, func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			wruntime.BrowserOpenURL(ctx, repoURL)
		})
	})
	rootMenu.Append(menu.SubMenu("Help", helpMenu))

	return rootMenu
}

func openPathInExplorer(ctx context.Context, path string) {
	if path == "" {
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		log.Printf("resolve path %s failed: %v", path, err)
		abs = path
	}
	wruntime.BrowserOpenURL(ctx, fileURI(abs))
}

func fileURI(path string) string {
	clean := filepath.ToSlash(path)
	if runtime.GOOS == "windows" && len(clean) > 0 && clean[0] != '/' {
		clean = "/" + clean
	}
	u := url.URL{Scheme: "file", Path: clean}
	return u.String()
}

func toggleFullscreen(ctx context.Context) {
	if wruntime.WindowIsFullscreen(ctx) {
		wruntime.WindowUnfullscreen(ctx)
		return
	}
	wruntime.WindowFullscreen(ctx)
}

func setAppContext(ctx context.Context) {
	appCtxMu.Lock()
	defer appCtxMu.Unlock()
	appCtx = ctx
}

func withAppContext(action func(context.Context)) {
	appCtxMu.RLock()
	ctx := appCtx
	appCtxMu.RUnlock()
	if ctx == nil {
		log.Println("application context not initialised; ignoring menu action")
		return
	}
	action(ctx)
}
