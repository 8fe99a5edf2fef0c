package mcpapi

// ListFilesArgs defines arguments for the list_files tool.
type ListFilesArgs struct {
	PathFilter string `json:"path_filter,omitempty" description:"Case-insensitive substring filter on path"`
}

// GetFileInfoArgs defines arguments for the get_file_info tool.
type GetFileInfoArgs struct {
	Path string `json:"path" description:"Exact path of the stored file"`
}

// DeleteFileArgs defines arguments for the delete_file tool.
type DeleteFileArgs struct {
	Path string `json:"path" description:"Exact path of the file to delete"`
}
