package rbac

var (
	adminOnly   = []Role{RoleAdmin}
	staffOnly   = []Role{RoleFaculty, RoleAdmin}
	studentOnly = []Role{RoleStudent}
	facultyOnly = []Role{RoleFaculty}
)

// Screen registry. Defined once at startup and never mutated. Screens
// without AllowedRoles admit any signed-in principal.
var (
	ScreenStudentDashboard = Screen{Name: "Student Dashboard", Path: "/dashboard/student", AllowedRoles: studentOnly}
	ScreenFacultyDashboard = Screen{Name: "Faculty Dashboard", Path: "/dashboard/faculty", AllowedRoles: facultyOnly}
	ScreenAdminDashboard   = Screen{Name: "Admin Dashboard", Path: "/dashboard/admin", AllowedRoles: adminOnly}

	ScreenProfile = Screen{Name: "Profile", Path: "/profile"}

	ScreenAnnouncements      = Screen{Name: "Announcements", Path: "/announcements"}
	ScreenAnnouncementManage = Screen{Name: "Announcement Manager", Path: "/announcements/manage", AllowedRoles: adminOnly}

	ScreenCalendar       = Screen{Name: "Academic Calendar", Path: "/calendar"}
	ScreenCalendarManage = Screen{Name: "Calendar Manager", Path: "/calendar/manage", AllowedRoles: adminOnly}

	ScreenResources      = Screen{Name: "Resources", Path: "/resources"}
	ScreenResourceManage = Screen{Name: "Resource Manager", Path: "/resources/manage", AllowedRoles: adminOnly}

	ScreenCurriculum       = Screen{Name: "Curriculum", Path: "/curriculum"}
	ScreenCurriculumUpload = Screen{Name: "Upload Curriculum", Path: "/curriculum/upload", AllowedRoles: staffOnly}

	ScreenAccessMatrix = Screen{Name: "Access Matrix", Path: "/admin/access", AllowedRoles: adminOnly}
	ScreenJobs         = Screen{Name: "Background Jobs", Path: "/jobs", AllowedRoles: adminOnly}
)

// Screens returns the registry in navigation order.
func Screens() []Screen {
	return []Screen{
		ScreenStudentDashboard,
		ScreenFacultyDashboard,
		ScreenAdminDashboard,
		ScreenProfile,
		ScreenAnnouncements,
		ScreenAnnouncementManage,
		ScreenCalendar,
		ScreenCalendarManage,
		ScreenResources,
		ScreenResourceManage,
		ScreenCurriculum,
		ScreenCurriculumUpload,
		ScreenAccessMatrix,
		ScreenJobs,
	}
}
