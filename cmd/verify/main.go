// verify recorre la historia de movimientos de cada activo y valida que forme
// una cadena consistente de ubicaciones. Propone reparaciones de fecha para
// movimientos registrados fuera de orden y, con --sweep, barre activos
// huérfanos sin rastro de movimientos.
//
// Uso: verify [flags]
//
//	--asset-ids 12,99   solo estos activos
//	--offset N          reanudar desde el offset N
//	--limit N           procesar a lo sumo N activos
//	--chunk N           activos por transacción
//	--dry-run           no escribir nada, solo reportar
//	--yes               aceptar todas las reparaciones sin preguntar
//	--sweep             barrer huérfanos antes de verificar
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jhoicas/Activos-api/internal/application/verify"
	"github.com/jhoicas/Activos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Activos-api/pkg/config"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

func main() {
	var (
		assetIDs = flag.String("asset-ids", "", "ids de activos separados por coma; vacío = todos")
		offset   = flag.Int("offset", 0, "offset inicial de la paginación")
		limit    = flag.Int("limit", 0, "máximo de activos a procesar; 0 = sin límite")
		chunk    = flag.Int("chunk", 0, "activos por transacción; 0 = valor de configuración")
		dryRun   = flag.Bool("dry-run", false, "no escribir nada, solo reportar")
		yes      = flag.Bool("yes", false, "aceptar todas las reparaciones sin preguntar")
		sweep    = flag.Bool("sweep", false, "barrer activos huérfanos antes de verificar")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	ids, err := parseIDs(*assetIDs)
	if err != nil {
		log.Fatal().Err(err).Msg("asset-ids inválidos")
	}
	chunkSize := *chunk
	if chunkSize <= 0 {
		chunkSize = cfg.Verify.ChunkSize
	}

	decide := consoleDecision()
	if *yes {
		decide = func(string) bool { return true }
	}

	txRunner := postgres.NewTxRunner(pool)
	assetRepo := postgres.NewAssetRepository(pool)
	uc := verify.NewUseCase(txRunner, assetRepo)

	if *sweep {
		sw, err := uc.SweepOrphans(ctx, *dryRun, decide)
		if err != nil {
			log.Fatal().Err(err).Msg("barrido de huérfanos")
		}
		log.Info().
			Int("eliminados_sin_rastro", sw.DeletedNoTrace).
			Int("limpiados_en_recepcion", sw.ClearedIncoming).
			Int("varados_revisados", sw.ReviewedStranded).
			Msg("barrido de huérfanos terminado")
	}

	report, err := uc.Run(ctx, verify.Options{
		AssetIDs:  ids,
		Offset:    *offset,
		Limit:     *limit,
		ChunkSize: chunkSize,
		DryRun:    *dryRun,
		Decide:    decide,
	})
	if report != nil {
		printReport(report)
	}
	if err != nil {
		ev := log.Fatal().Err(err)
		if report != nil {
			ev = ev.Int("reanudar_desde", report.LastCommittedOffset)
		}
		ev.Msg("verificación interrumpida")
	}
	log.Info().
		Int("procesados", report.Processed).
		Int("consistentes", report.Consistent).
		Int("reparados", report.Repaired).
		Int("con_hallazgos", report.WithFindings).
		Msg("verificación terminada")
}

// consoleDecision pregunta por stdin; cualquier cosa distinta de "s"/"y" es no.
func consoleDecision() verify.Decision {
	reader := bufio.NewReader(os.Stdin)
	return func(question string) bool {
		fmt.Printf("%s [s/N]: ", question)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "s", "si", "sí", "y", "yes":
			return true
		}
		return false
	}
}

func parseIDs(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printReport(r *verify.Report) {
	for _, res := range r.Results {
		if res.Status == verify.StatusConsistent {
			continue
		}
		fmt.Printf("activo #%d: %s\n", res.AssetID, res.Status)
		for _, rep := range res.Repairs {
			applied := "propuesta"
			if rep.Applied {
				applied = "aplicada"
			}
			fmt.Printf("  reparación %s: movimiento #%d %s -> %s\n",
				applied, rep.MovementID,
				rep.OldDateAct.Format("2006-01-02"), rep.NewDateAct.Format("2006-01-02"))
		}
		for _, f := range res.Findings {
			fmt.Printf("  hallazgo %s: movimiento #%d, esperado %s, encontrado %s\n",
				f.Kind, f.MovementID, fmtLocPtr(f.ExpectedLocationID), fmtLocPtr(&f.FoundLocationID))
		}
		if res.LocationMismatch {
			fixed := "sin corregir"
			if res.LocationFixed {
				fixed = "corregida"
			}
			fmt.Printf("  ubicación almacenada inconsistente (%s), propuesta: %s\n",
				fixed, fmtLocPtr(res.ProposedLocationID))
		}
	}
}

func fmtLocPtr(id *int64) string {
	if id == nil {
		return "ninguna"
	}
	return fmt.Sprintf("#%d", *id)
}
