package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/infrastructure/storage"
	"cabinet-suite-core/internal/modules/parametres/dto"
	"cabinet-suite-core/internal/modules/parametres/queries"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/audit"
	"cabinet-suite-core/internal/shared/middleware/tenant"
)

// ThemeStore persistance des paramètres visuels
type ThemeStore interface {
	Get(ctx context.Context, cabinetID string) (*dto.Theme, error)
	Save(ctx context.Context, theme dto.Theme) error
	SetImageFond(ctx context.Context, cabinetID, nom string, at time.Time) error
}

// ImageArchive répertoire images/ du cabinet
type ImageArchive interface {
	Save(adminEmail, sub, name string, data []byte) (string, error)
	Path(adminEmail, sub, name string) (string, error)
}

// Lettres, chiffres, espaces, virgules, apostrophes et tirets: rien qui puisse fermer la déclaration CSS
var policeFormat = regexp.MustCompile(`^[\p{L}0-9 ,'\-]+$`)

var extensionsImage = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

const DefaultMaxUpload = 5 << 20

type ThemeService struct {
	store     ThemeStore
	images    ImageArchive
	journal   *audit.Journal
	maxUpload int64
	now       func() time.Time
}

func NewThemeService(store ThemeStore, images ImageArchive, journal *audit.Journal, cfg *config.Config) *ThemeService {
	maxUpload := cfg.Storage.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	return &ThemeService{
		store:     store,
		images:    images,
		journal:   journal,
		maxUpload: maxUpload,
		now:       time.Now,
	}
}

// MaxUpload taille maximale d'une image de fond
func (s *ThemeService) MaxUpload() int64 {
	return s.maxUpload
}

// Get thème du cabinet, valeurs par défaut si absent ou si MongoDB ne répond pas
func (s *ThemeService) Get(ctx context.Context, cabinet tenant.CabinetContext) (*dto.Theme, error) {
	theme, err := s.store.Get(ctx, cabinet.ID)
	if errors.Is(err, queries.ErrIndisponible) {
		defaults := dto.Defaults(cabinet.ID)
		return &defaults, nil
	}
	if err != nil {
		return nil, apperr.Internal("THEME_LOOKUP_FAILED", err)
	}
	if theme == nil {
		defaults := dto.Defaults(cabinet.ID)
		return &defaults, nil
	}
	return theme, nil
}

func (s *ThemeService) Update(ctx context.Context, cabinet tenant.CabinetContext, userID string, req dto.ThemeRequest) (*dto.Theme, error) {
	police := strings.Join(strings.Fields(req.Police), " ")
	if !policeFormat.MatchString(police) {
		return nil, apperr.Validation("POLICE_INVALIDE", "Police invalide (lettres, chiffres, virgules, tirets)")
	}

	current, err := s.Get(ctx, cabinet)
	if err != nil {
		return nil, err
	}

	theme := dto.Theme{
		CabinetID:  cabinet.ID,
		Primaire:   strings.ToUpper(req.Primaire),
		Secondaire: strings.ToUpper(req.Secondaire),
		Fond:       strings.ToUpper(req.Fond),
		Texte:      strings.ToUpper(req.Texte),
		Police:     police,
		ImageFond:  current.ImageFond,
		UpdatedAt:  s.now().UTC(),
	}
	if err := s.store.Save(ctx, theme); err != nil {
		return nil, storeError("THEME_SAVE_FAILED", err)
	}

	s.journal.Record(audit.Event{
		CabinetID:     cabinet.ID,
		UtilisateurID: userID,
		Action:        audit.ActionThemeModifie,
		Details:       map[string]interface{}{"primaire": theme.Primaire, "police": theme.Police},
	})
	return &theme, nil
}

// UploadFond enregistre l'image de fond dans images/ du cabinet
func (s *ThemeService) UploadFond(ctx context.Context, cabinet tenant.CabinetContext, userID string, data []byte) (*dto.Theme, error) {
	if len(data) == 0 {
		return nil, apperr.Validation("FICHIER_REQUIS", "Image requise (champ image)")
	}
	if int64(len(data)) > s.maxUpload {
		return nil, apperr.Validation("FICHIER_TROP_VOLUMINEUX", fmt.Sprintf("Image limitée à %d Mo", s.maxUpload>>20))
	}

	ext, ok := extensionsImage[http.DetectContentType(data)]
	if !ok {
		return nil, apperr.Validation("FORMAT_NON_SUPPORTE", "Formats acceptés: png, jpeg, webp")
	}

	now := s.now()
	nom := fmt.Sprintf("fond-%d%s", now.Unix(), ext)
	if _, err := s.images.Save(cabinet.EmailAdmin, storage.DirImages, nom, data); err != nil {
		return nil, apperr.Internal("IMAGE_SAVE_FAILED", err)
	}
	if err := s.store.SetImageFond(ctx, cabinet.ID, nom, now.UTC()); err != nil {
		return nil, storeError("THEME_SAVE_FAILED", err)
	}

	s.journal.Record(audit.Event{
		CabinetID:     cabinet.ID,
		UtilisateurID: userID,
		Action:        audit.ActionThemeModifie,
		Cible:         nom,
	})
	return s.Get(ctx, cabinet)
}

// ImageFond chemin du fichier de fond courant
func (s *ThemeService) ImageFond(ctx context.Context, cabinet tenant.CabinetContext) (string, error) {
	theme, err := s.Get(ctx, cabinet)
	if err != nil {
		return "", err
	}
	if theme.ImageFond == "" {
		return "", apperr.NotFound("FOND_ABSENT", "Aucune image de fond")
	}
	path, err := s.images.Path(cabinet.EmailAdmin, storage.DirImages, theme.ImageFond)
	if err != nil {
		return "", apperr.Internal("IMAGE_PATH_INVALIDE", err)
	}
	return path, nil
}

// CSS variables du thème injectées dans les pages
func (s *ThemeService) CSS(ctx context.Context, cabinet tenant.CabinetContext) (string, error) {
	theme, err := s.Get(ctx, cabinet)
	if err != nil {
		return "", err
	}
	return RenderCSS(*theme, cabinet.Code), nil
}

func RenderCSS(theme dto.Theme, cabinetCode string) string {
	var b strings.Builder
	b.WriteString(":root {\n")
	fmt.Fprintf(&b, "  --couleur-primaire: %s;\n", theme.Primaire)
	fmt.Fprintf(&b, "  --couleur-secondaire: %s;\n", theme.Secondaire)
	fmt.Fprintf(&b, "  --couleur-fond: %s;\n", theme.Fond)
	fmt.Fprintf(&b, "  --couleur-texte: %s;\n", theme.Texte)
	fmt.Fprintf(&b, "  --police: %s;\n", theme.Police)
	if theme.ImageFond != "" {
		fmt.Fprintf(&b, "  --image-fond: url(\"/api/v1/parametres/theme/fond?cabinet=%s&v=%s\");\n", cabinetCode, theme.ImageFond)
	}
	b.WriteString("}\n")
	b.WriteString("body {\n  background-color: var(--couleur-fond);\n  color: var(--couleur-texte);\n  font-family: var(--police);\n}\n")
	return b.String()
}

// Manifest manifeste PWA aux couleurs du cabinet
func (s *ThemeService) Manifest(ctx context.Context, cabinet tenant.CabinetContext) (*dto.Manifest, error) {
	theme, err := s.Get(ctx, cabinet)
	if err != nil {
		return nil, err
	}

	nom := strings.TrimSpace(cabinet.Nom)
	if nom == "" {
		nom = cabinet.Code
	}
	icons := make([]dto.ManifestIcon, 0, len(taillesIcone))
	for _, taille := range taillesIcone {
		icons = append(icons, dto.ManifestIcon{
			Src:   IconeURL(cabinet.Code, taille),
			Sizes: fmt.Sprintf("%dx%d", taille, taille),
			Type:  "image/png",
		})
	}
	return &dto.Manifest{
		Name:            nom,
		ShortName:       shortName(nom),
		StartURL:        "/?cabinet=" + cabinet.Code,
		Display:         "standalone",
		ThemeColor:      theme.Primaire,
		BackgroundColor: theme.Fond,
		Icons:           icons,
	}, nil
}

// shortName 12 caractères au plus, coupé sur un mot quand c'est possible
func shortName(nom string) string {
	runes := []rune(nom)
	if len(runes) <= 12 {
		return nom
	}
	cut := string(runes[:12])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}

func storeError(code string, err error) error {
	if errors.Is(err, queries.ErrIndisponible) {
		return apperr.Unavailable("PARAMETRES_INDISPONIBLES", "Paramètres temporairement indisponibles")
	}
	return apperr.Internal(code, err)
}
