package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"

	"cabinet-suite-core/internal/modules/parametres/dto"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/middleware/tenant"
)

// Tailles annoncées dans le manifeste
var taillesIcone = []int{192, 512}

// IconeURL adresse d'une icône; le navigateur n'envoie pas X-Cabinet-Code
func IconeURL(cabinetCode string, taille int) string {
	return fmt.Sprintf("/api/v1/parametres/icons/icon-%d.png?cabinet=%s", taille, cabinetCode)
}

// Icone PNG de l'application, fichier de la forme icon-192.png
func (s *ThemeService) Icone(ctx context.Context, cabinet tenant.CabinetContext, fichier string) ([]byte, error) {
	taille, ok := tailleIcone(fichier)
	if !ok {
		return nil, apperr.NotFound("ICONE_INCONNUE", "Icône inconnue")
	}
	theme, err := s.Get(ctx, cabinet)
	if err != nil {
		return nil, err
	}
	data, err := RenderIcone(*theme, taille)
	if err != nil {
		return nil, apperr.Internal("ICONE_ECHEC", err)
	}
	return data, nil
}

func tailleIcone(fichier string) (int, bool) {
	raw, ok := strings.CutPrefix(fichier, "icon-")
	if !ok {
		return 0, false
	}
	raw, ok = strings.CutSuffix(raw, ".png")
	if !ok {
		return 0, false
	}
	taille, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	for _, t := range taillesIcone {
		if t == taille {
			return taille, true
		}
	}
	return 0, false
}

// RenderIcone croix couleur de fond sur un carré couleur primaire
func RenderIcone(theme dto.Theme, taille int) ([]byte, error) {
	defaults := dto.Defaults(theme.CabinetID)
	primaire := parseCouleur(theme.Primaire, defaults.Primaire)
	fond := parseCouleur(theme.Fond, defaults.Fond)

	img := image.NewRGBA(image.Rect(0, 0, taille, taille))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: primaire}, image.Point{}, draw.Src)

	epaisseur, longueur := taille/5, taille*3/5
	debut := (taille - longueur) / 2
	milieu := (taille - epaisseur) / 2
	croix := &image.Uniform{C: fond}
	draw.Draw(img, image.Rect(milieu, debut, milieu+epaisseur, debut+longueur), croix, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(debut, milieu, debut+longueur, milieu+epaisseur), croix, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encodage icône: %w", err)
	}
	return buf.Bytes(), nil
}

// parseCouleur #RGB ou #RRGGBB, fallback sinon
func parseCouleur(hex, fallback string) color.RGBA {
	c, ok := decodeCouleur(hex)
	if !ok {
		c, _ = decodeCouleur(fallback)
	}
	return c
}

func decodeCouleur(hex string) (color.RGBA, bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, true
}
