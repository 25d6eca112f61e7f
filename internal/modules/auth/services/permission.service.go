package services

import (
	"sort"

	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
)

// Permissions fonctionnelles renvoyées au client pour adapter l'interface
const (
	PermPatientsLire      = "patients:lire"
	PermPatientsEcrire    = "patients:ecrire"
	PermPatientsSupprimer = "patients:supprimer"
	PermPatientsImporter  = "patients:importer"
	PermRdvGerer          = "rdv:gerer"
	PermConsultations     = "consultations:gerer"
	PermFacturesGerer     = "factures:gerer"
	PermFacturesAnnuler   = "factures:annuler"
	PermStatistiques      = "statistiques:lire"
	PermUtilisateurs      = "utilisateurs:gerer"
	PermCabinetParametres = "cabinet:parametres"
	PermActivation        = "activation:gerer"
	PermJournal           = "journal:lire"
)

var rolePermissions = map[string][]string{
	authMiddleware.RoleAdmin: {
		PermPatientsLire, PermPatientsEcrire, PermPatientsSupprimer, PermPatientsImporter,
		PermRdvGerer, PermConsultations, PermFacturesGerer, PermFacturesAnnuler,
		PermStatistiques, PermUtilisateurs, PermCabinetParametres, PermActivation, PermJournal,
	},
	authMiddleware.RoleMedecin: {
		PermPatientsLire, PermPatientsEcrire, PermPatientsSupprimer,
		PermRdvGerer, PermConsultations, PermFacturesGerer, PermStatistiques,
	},
	authMiddleware.RoleAssistante: {
		PermPatientsLire, PermPatientsEcrire, PermRdvGerer, PermFacturesGerer,
	},
}

// PermissionService dérive les permissions du rôle de l'utilisateur
type PermissionService struct{}

// NewPermissionService crée une nouvelle instance du service de permissions
func NewPermissionService() *PermissionService {
	return &PermissionService{}
}

// ForRole liste triée; vide pour un rôle inconnu
func (s *PermissionService) ForRole(role string) []string {
	perms := append([]string{}, rolePermissions[role]...)
	sort.Strings(perms)
	return perms
}

func (s *PermissionService) Has(role, permission string) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
